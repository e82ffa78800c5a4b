package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestRegisteredDoc(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var spec struct {
		Info  struct{ Title string } `json:"info"`
		Paths map[string]any         `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if spec.Info.Title != SwaggerInfo.Title {
		t.Errorf("title = %q", spec.Info.Title)
	}
	for _, path := range []string{"/api/chat/sessions", "/api/chat/sessions/{id}/messages", "/api/voices"} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("missing path %s", path)
		}
	}
}
