package service

import (
	"compliflow/internal/compliance/model"
	"compliflow/pkg/errors"
)

// RequirementSet is the compliance checklist applicable to one source.
type RequirementSet struct {
	Source         string   `json:"source"`
	General        []string `json:"general"`
	SourceSpecific []string `json:"source_specific"`
}

// RequirementCatalog groups every checklist by category for browsing.
type RequirementCatalog struct {
	Categories []RequirementCategory `json:"categories"`
}

// RequirementCategory is one named group of compliance rules.
type RequirementCategory struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules"`
}

var generalRequirements = []string{
	"No misleading statements about product performance",
	"Clear disclosure of fees and expenses",
	"No promises of specific returns",
	"Balanced presentation of risks and benefits",
	"No guarantees of future performance",
	"Appropriate disclaimers included",
	"Compliant with regulatory guidelines",
}

var sourceRequirements = map[model.Source][]string{
	model.SourceThirdParty: {
		"Clear attribution of source",
		"Written permission obtained",
		"No alteration of original content meaning",
		"Compliant with GGTC co-branding guidelines",
		"Dated within last 12 months",
	},
	model.SourceCorporateMarketing: {
		"Approved by department head",
		"Compliant with brand guidelines",
		"Contains required legal disclaimers",
		"Referenced data is current and accurate",
		"Appropriate for target audience",
	},
	model.SourceRFPResponse: {
		"All statements factually accurate",
		"Product capabilities accurately represented",
		"No forward-looking statements without disclaimers",
		"Claims supported by documentation",
		"All metrics and statistics verified",
	},
}

// RequirementsForSource returns the general rules plus the rules specific to
// the given source.
func RequirementsForSource(source model.Source) (*RequirementSet, error) {
	rules, ok := sourceRequirements[source]
	if !ok {
		return nil, errors.Newf(errors.RequirementsNotFound, "no requirements defined for source %q", source)
	}
	return &RequirementSet{
		Source:         string(source),
		General:        append([]string(nil), generalRequirements...),
		SourceSpecific: append([]string(nil), rules...),
	}, nil
}

// Requirements returns the full catalog, general rules first.
func Requirements() *RequirementCatalog {
	catalog := &RequirementCatalog{
		Categories: []RequirementCategory{
			{Name: "General", Rules: append([]string(nil), generalRequirements...)},
		},
	}
	for _, src := range model.Sources {
		catalog.Categories = append(catalog.Categories, RequirementCategory{
			Name:  string(src),
			Rules: append([]string(nil), sourceRequirements[src]...),
		})
	}
	return catalog
}
