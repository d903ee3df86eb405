// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func mockRender(t *testing.T) {
	t.Helper()
	original := render
	t.Cleanup(func() { render = original })
	render = func(in string, _ string) (string, error) { return in, nil }
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		contains string
	}{
		{ToolNotFoundId, "Required tool not found"},
		{CommandFailedId, "Command failed"},
		{ConfigLoadFailedId, "Failed to load configuration"},
		{UpdateFailedId, "Update failed"},
		{PermissionDeniedId, "Permission denied"},
		{AliasFailedId, "shell alias"},
		{NotInteractiveId, "No terminal attached"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			got := Get(tt.id)
			if got == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if !strings.Contains(string(got.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}

	if Get(Id(9999)) != nil {
		t.Error("Get(9999) should return nil")
	}
}

func TestValues_OrderedByID(t *testing.T) {
	values := Values()
	if len(values) != 7 {
		t.Fatalf("Values() returned %d issues, want 7", len(values))
	}
	for i, is := range values {
		if is.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), i+1)
		}
	}
}

func TestIssue_DocLinksIsACopy(t *testing.T) {
	links := Get(ToolNotFoundId).DocLinks()
	if len(links) == 0 {
		t.Fatal("expected doc links")
	}
	links[0] = "modified"
	if Get(ToolNotFoundId).DocLinks()[0] == "modified" {
		t.Error("DocLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	mockRender(t)

	withLinks, err := Get(UpdateFailedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(withLinks, "See also") || !strings.Contains(withLinks, "releases") {
		t.Errorf("Render() with links = %q", withLinks)
	}

	noLinks, err := Get(CommandFailedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(noLinks, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	out, err := Get(NotInteractiveId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "qakit nwtest") {
		t.Errorf("rendered guide lost its content:\n%s", out)
	}
}
