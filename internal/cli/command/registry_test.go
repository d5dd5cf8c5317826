package command

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRegistryKeys(t *testing.T) {
	registry := Registry()
	for _, key := range []string{
		"submission create",
		"submission get",
		"submission content",
		"queue list",
		"queue assign",
		"metrics table",
		"metrics summary",
		"requirements list",
	} {
		if _, ok := registry[key]; !ok {
			t.Fatalf("missing command %q", key)
		}
	}
}

func TestBuildRequestPathAndQuery(t *testing.T) {
	registry := Registry()
	cmd := registry["queue list"]

	params := Params{}
	params.Set("status", "Pending,In Review")
	spec, err := BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if spec.Method != "GET" {
		t.Fatalf("unexpected method: %s", spec.Method)
	}
	if !strings.HasPrefix(spec.Path, "/api/v1/submissions?status=") {
		t.Fatalf("unexpected path: %s", spec.Path)
	}
}

func TestBuildRequestBody(t *testing.T) {
	registry := Registry()
	cmd := registry["queue assign"]

	params := Params{}
	params.Set("id", "SUB-2026-0001")
	params.Set("reviewer", "Amanda H.")
	spec, err := BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if spec.Path != "/api/v1/submissions/SUB-2026-0001/assign" {
		t.Fatalf("unexpected path: %s", spec.Path)
	}

	var body map[string]string
	if err := json.Unmarshal(spec.Body, &body); err != nil {
		t.Fatalf("unmarshal body failed: %v", err)
	}
	if body["reviewer"] != "Amanda H." {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestBuildRequestMultipart(t *testing.T) {
	registry := Registry()
	cmd := registry["submission create"]

	params := Params{}
	params.Set("title", "Q3 Whitepaper")
	params.Set("type", "Whitepaper")
	params.Set("source", "Corporate Marketing")
	params.Set("pages", "12")
	params.Set("content", "./draft.pdf")

	spec, err := BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if spec.FileField != "content" || spec.FilePath != "./draft.pdf" {
		t.Fatalf("unexpected file spec: %+v", spec)
	}
	if spec.FormFields["material_type"] != "Whitepaper" {
		t.Fatalf("alias was not canonicalized: %v", spec.FormFields)
	}
	if spec.FormFields["page_count"] != "12" {
		t.Fatalf("unexpected form fields: %v", spec.FormFields)
	}
}

func TestBuildRequestValidation(t *testing.T) {
	registry := Registry()
	cmd := registry["queue assign"]

	params := Params{}
	params.Set("id", "SUB-2026-0001")
	if _, err := BuildRequest(cmd, params); err == nil {
		t.Fatalf("expected error for missing reviewer")
	}

	create := registry["submission create"]
	params = Params{}
	params.Set("title", "T")
	params.Set("type", "Whitepaper")
	params.Set("source", "Corporate Marketing")
	params.Set("pages", "twelve")
	params.Set("content", "./draft.pdf")
	if _, err := BuildRequest(create, params); err == nil {
		t.Fatalf("expected error for non-integer page count")
	}
}
