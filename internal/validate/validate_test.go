package validate

import "testing"

func TestValidateConfigJSONAcceptsMinimalDocument(t *testing.T) {
	doc := []byte(`{"repo_name":"demo","wal_path":"./demo.wal","recipe_dir":"./recipes","package_dir":"./packages"}`)
	if err := ValidateConfigJSON(doc); err != nil {
		t.Fatalf("expected valid config document, got %v", err)
	}
}

func TestValidateConfigJSONRejectsMissingRequiredField(t *testing.T) {
	doc := []byte(`{"repo_name":"demo","recipe_dir":"./recipes","package_dir":"./packages"}`)
	if err := ValidateConfigJSON(doc); err == nil {
		t.Fatal("expected error for missing wal_path")
	}
}

func TestValidateConfigJSONRejectsUnknownField(t *testing.T) {
	doc := []byte(`{"repo_name":"demo","wal_path":"./demo.wal","recipe_dir":"./recipes","package_dir":"./packages","bogus":"x"}`)
	if err := ValidateConfigJSON(doc); err == nil {
		t.Fatal("expected error for unknown field under additionalProperties:false")
	}
}

func TestValidateRecipeJSONAcceptsMinimalDocument(t *testing.T) {
	doc := []byte(`{"name":"a","version":"1.0","release":1,"arch":["any"],"depends":[],"makedepends":[],"checkdepends":[],"optdepends":[]}`)
	if err := ValidateRecipeJSON(doc); err != nil {
		t.Fatalf("expected valid recipe document, got %v", err)
	}
}

func TestValidateAgainstSchemaRejectsMalformedJSON(t *testing.T) {
	if err := ValidateAgainstSchema("x.json", []byte(`{"type":"object"}`), []byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed JSON input")
	}
}
