package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"focustube-ml/internal/application/curation"
	"focustube-ml/internal/application/viewerstats"
	"focustube-ml/internal/domain/entity"
	"focustube-ml/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// topicEmbedder 含 cook 的文本落在第二维，其余落在第一维
var topicEmbedder = curation.EmbedderFunc(func(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.Contains(strings.ToLower(t), "cook") {
			out[i] = []float32{0, 1}
		} else {
			out[i] = []float32{1, 0}
		}
	}
	return out, nil
})

func newVideoEngine(e curation.Embedder) *gin.Engine {
	h := NewVideoHandler(curation.NewPipeline(e, curation.NewLexicalScorer(nil), 0.6,
		curation.WithLimits(curation.Limits{MaxCandidates: 3, MaxDisinterests: 2})))
	r := gin.New()
	r.POST("/api/videos/rank", h.Rank)
	r.POST("/api/videos/search", h.Search)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchFiltersAndRanks(t *testing.T) {
	r := newVideoEngine(topicEmbedder)
	body := `{
		"query": "programming",
		"disinterests": ["cooking"],
		"videos": [
			{"id": "1", "title": "Cooking Pasta", "description": "Italian food"},
			{"id": "2", "title": "React Tutorial", "description": "Learn React"},
			{"id": "3", "title": "React Hooks", "description": "Learn hooks tutorial"}
		]
	}`

	w := doJSON(t, r, http.MethodPost, "/api/videos/search", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.BlockedCount != 1 || len(resp.Blocked) != 1 {
		t.Fatalf("blocked = %d %+v", resp.BlockedCount, resp.Blocked)
	}
	if b := resp.Blocked[0]; b.ID != "1" || b.Reason != "keyword+semantic" || b.Phrase != "cooking" {
		t.Errorf("blocked[0] = %+v", b)
	}
	if len(resp.Videos) != 2 || resp.Videos[0].ID != "2" || resp.Videos[1].ID != "3" {
		t.Errorf("videos = %+v", resp.Videos)
	}
}

func TestSearchEmptyCandidates(t *testing.T) {
	w := doJSON(t, newVideoEngine(topicEmbedder), http.MethodPost, "/api/videos/search",
		`{"query": "x", "disinterests": ["cooking"], "videos": []}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"videos":[],"blocked_count":0,"blocked":[]}` {
		t.Errorf("body = %s", got)
	}
}

func TestSearchRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"videos": [`, http.StatusBadRequest},
		{"missing videos", `{"query": "x"}`, http.StatusBadRequest},
		{"missing title", `{"videos": [{"id": "1"}]}`, http.StatusBadRequest},
		{"threshold above one", `{"videos": [], "threshold": 1.5}`, http.StatusBadRequest},
		{"negative threshold", `{"videos": [], "threshold": -0.1}`, http.StatusBadRequest},
		{"too many candidates", `{"videos": [{"id":"1","title":"a"},{"id":"2","title":"b"},{"id":"3","title":"c"},{"id":"4","title":"d"}]}`, http.StatusBadRequest},
		{"too many disinterests", `{"disinterests": ["a","b","c"], "videos": [{"id":"1","title":"a"}]}`, http.StatusBadRequest},
	}

	r := newVideoEngine(topicEmbedder)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/videos/search", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSearchModelFailure(t *testing.T) {
	failing := curation.EmbedderFunc(func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("model down")
	})
	w := doJSON(t, newVideoEngine(failing), http.MethodPost, "/api/videos/search",
		`{"disinterests": ["cooking"], "videos": [{"id":"1","title":"a"}]}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body = %s", w.Code, w.Body.String())
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.ErrorCode != "4006" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRankReturnsBareArray(t *testing.T) {
	body := `{"videos": [
		{"id": "a", "title": "Vlog"},
		{"id": "b", "title": "Go course", "description": "learn go"}
	]}`
	w := doJSON(t, newVideoEngine(topicEmbedder), http.MethodPost, "/api/videos/rank", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var videos []entity.Video
	if err := json.Unmarshal(w.Body.Bytes(), &videos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(videos) != 2 || videos[0].ID != "b" || videos[1].ID != "a" {
		t.Errorf("videos = %+v", videos)
	}
}

type stubStatsRepo struct {
	stats *entity.ViewerStats
}

func (s stubStatsRepo) Apply(context.Context, string, *entity.ViewerStatsDelta) (bool, error) {
	return true, nil
}

func (s stubStatsRepo) Get(_ context.Context, viewerID string) (*entity.ViewerStats, error) {
	out := *s.stats
	out.ViewerID = viewerID
	return &out, nil
}

func TestViewerStats(t *testing.T) {
	repo := stubStatsRepo{stats: &entity.ViewerStats{BlockedTotal: 7, SearchesTotal: 3, ByReason: map[string]int64{"keyword": 7}}}

	tests := []struct {
		name   string
		authed string
		svc    *viewerstats.Service
		want   int
	}{
		{"anonymous", "", viewerstats.NewService(repo), http.StatusOK},
		{"own stats", "v1", viewerstats.NewService(repo), http.StatusOK},
		{"other viewer", "v2", viewerstats.NewService(repo), http.StatusForbidden},
		{"store disabled", "", viewerstats.NewService(nil), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewViewerHandler(tt.svc)
			r := gin.New()
			r.GET("/api/viewers/:vid/stats", func(c *gin.Context) {
				if tt.authed != "" {
					c.Set("viewer_id", tt.authed)
				}
				h.Stats(c)
			})

			w := doJSON(t, r, http.MethodGet, "/api/viewers/v1/stats", "")
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}

			var resp dto.Response[entity.ViewerStats]
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Data.ViewerID != "v1" || resp.Data.BlockedTotal != 7 {
				t.Errorf("data = %+v", resp.Data)
			}
		})
	}
}
