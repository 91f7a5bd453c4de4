package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paramsFor(t *testing.T, rawQuery string) Params {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	c.Request = req

	return Extract(c)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{name: "defaults", query: "", want: Params{Page: 1, Limit: 20, Skip: 0}},
		{name: "explicit", query: "page=3&limit=10", want: Params{Page: 3, Limit: 10, Skip: 20}},
		{name: "limit capped", query: "limit=500", want: Params{Page: 1, Limit: 100, Skip: 0}},
		{name: "negative page", query: "page=-2", want: Params{Page: 1, Limit: 20, Skip: 0}},
		{name: "garbage input", query: "page=abc&limit=xyz", want: Params{Page: 1, Limit: 20, Skip: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paramsFor(t, tt.query); got != tt.want {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMetadataFrom(t *testing.T) {
	meta := MetadataFrom(45, Params{Page: 2, Limit: 20, Skip: 20})

	if meta.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", meta.TotalPages)
	}
	if !meta.HasNextPage || !meta.HasPrevPage {
		t.Errorf("page flags = next:%v prev:%v, want both true", meta.HasNextPage, meta.HasPrevPage)
	}

	last := MetadataFrom(45, Params{Page: 3, Limit: 20, Skip: 40})
	if last.HasNextPage {
		t.Errorf("last page: HasNextPage = true, want false")
	}
}
