package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextFor(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "/", DefaultLimit, 0},
		{"custom", "/?limit=50&offset=10", 50, 10},
		{"max limit", "/?limit=500", MaxLimit, 0},
		{"negative offset", "/?offset=-5", DefaultLimit, 0},
		{"garbage", "/?limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromContext(contextFor(tt.target))
			if p.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, p.Limit)
			}
			if p.Offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, p.Offset)
			}
		})
	}
}

func TestNewPage(t *testing.T) {
	p := Params{Limit: 10, Offset: 20}

	page := NewPage([]int{1, 2, 3}, 35, p)
	if !page.HasMore {
		t.Error("expected HasMore when offset+limit < total")
	}
	if page.Total != 35 || page.Limit != 10 || page.Offset != 20 {
		t.Errorf("unexpected page: %+v", page)
	}
	if page.NextOffset == nil || *page.NextOffset != 30 {
		t.Errorf("expected next offset 30, got %v", page.NextOffset)
	}

	last := NewPage([]int{}, 30, p)
	if last.HasMore {
		t.Error("expected no more pages at the end")
	}
	if last.NextOffset != nil {
		t.Errorf("expected no next offset on the last page, got %d", *last.NextOffset)
	}
}
