package command

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Registry returns the command table keyed by "<service> <action>".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service:      "submission",
			Action:       "create",
			Method:       "POST",
			PathTemplate: "/api/v1/submissions",
			FormFields: []Field{
				{Name: "title", Prompt: "Title", Required: true},
				{Name: "material_type", Aliases: []string{"type"}, Prompt: "Material type", Required: true},
				{Name: "source", Prompt: "Source", Required: true},
				{Name: "page_count", Aliases: []string{"pages"}, Prompt: "Page count", Type: FieldInt, Required: true},
			},
			FileField: "content",
		},
		{
			Service:      "submission",
			Action:       "get",
			Method:       "GET",
			PathTemplate: "/api/v1/submissions/{id}",
			PathParams:   []string{"id"},
		},
		{
			Service:      "submission",
			Action:       "content",
			Method:       "GET",
			PathTemplate: "/api/v1/submissions/{id}/content",
			PathParams:   []string{"id"},
			QueryParams:  []string{"expiry_seconds"},
		},
		{
			Service:      "queue",
			Action:       "list",
			Method:       "GET",
			PathTemplate: "/api/v1/submissions",
			QueryParams:  []string{"status"},
		},
		{
			Service:      "queue",
			Action:       "assign",
			Method:       "POST",
			PathTemplate: "/api/v1/submissions/{id}/assign",
			PathParams:   []string{"id"},
			BodyFields: []Field{
				{Name: "reviewer", Prompt: "Reviewer name", Required: true},
			},
		},
		{
			Service:      "metrics",
			Action:       "table",
			Method:       "GET",
			PathTemplate: "/api/v1/metrics",
			QueryParams:  []string{"months"},
		},
		{
			Service:      "metrics",
			Action:       "summary",
			Method:       "GET",
			PathTemplate: "/api/v1/metrics/summary",
		},
		{
			Service:      "requirements",
			Action:       "list",
			Method:       "GET",
			PathTemplate: "/api/v1/requirements",
			QueryParams:  []string{"source"},
		},
	}

	registry := make(map[string]Command, len(commands))
	for i := range commands {
		cmd := &commands[i]
		cmd.Fields = collectFields(cmd)
		registry[fmt.Sprintf("%s %s", cmd.Service, cmd.Action)] = *cmd
	}
	return registry
}

func collectFields(cmd *Command) []Field {
	var fields []Field
	for _, name := range cmd.PathParams {
		fields = append(fields, Field{Name: name, Prompt: name, Required: true})
	}
	fields = append(fields, cmd.FormFields...)
	fields = append(fields, cmd.BodyFields...)
	if cmd.FileField != "" {
		fields = append(fields, Field{Name: cmd.FileField, Prompt: "Path to " + cmd.FileField + " file", Type: FieldFile, Required: true})
	}
	for _, name := range cmd.QueryParams {
		fields = append(fields, Field{Name: name, Prompt: name})
	}
	return fields
}

// BuildRequest resolves the command and params into a concrete request.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	var spec RequestSpec
	params.Canonicalize(cmd.Fields)

	for _, field := range cmd.Fields {
		if field.Required && params.Get(field.Name) == "" {
			return spec, fmt.Errorf("missing required field: %s", field.Name)
		}
		if field.Type == FieldInt && params.Get(field.Name) != "" {
			if _, err := ParseInt(params.Get(field.Name)); err != nil {
				return spec, fmt.Errorf("field %s must be an integer", field.Name)
			}
		}
	}

	path := cmd.PathTemplate
	for _, name := range cmd.PathParams {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(params.Get(name)))
	}

	query := url.Values{}
	for _, name := range cmd.QueryParams {
		if value := params.Get(name); value != "" {
			query.Set(name, value)
		}
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	spec.Method = cmd.Method
	spec.Path = path

	if cmd.FileField != "" {
		spec.FormFields = make(map[string]string, len(cmd.FormFields))
		for _, field := range cmd.FormFields {
			spec.FormFields[field.Name] = params.Get(field.Name)
		}
		spec.FileField = cmd.FileField
		spec.FilePath = params.Get(cmd.FileField)
		return spec, nil
	}

	if len(cmd.BodyFields) > 0 {
		body := make(map[string]interface{}, len(cmd.BodyFields))
		for _, field := range cmd.BodyFields {
			value := params.Get(field.Name)
			if value == "" && !field.Required {
				continue
			}
			if field.Type == FieldInt {
				n, _ := ParseInt(value)
				body[field.Name] = n
				continue
			}
			body[field.Name] = value
		}
		data, err := json.Marshal(body)
		if err != nil {
			return spec, fmt.Errorf("marshal body failed: %w", err)
		}
		spec.Body = data
	}
	return spec, nil
}
