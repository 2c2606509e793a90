package tabfit

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func upload(t *testing.T, path, svg string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if svg != "" {
		fw, err := mw.CreateFormFile("file", "drawing.svg")
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, svg)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServerHealth(t *testing.T) {
	app := NewServer(&ServerConfig{}, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if _, err := uuid.Parse(resp.Header.Get("X-Request-Id")); err != nil {
		t.Errorf("bad request id %q: %v", resp.Header.Get("X-Request-Id"), err)
	}
}

func TestServerAdjust(t *testing.T) {
	app := NewServer(&ServerConfig{}, nil)
	req := upload(t, "/adjust", slotSVG, map[string]string{
		"marks":     "path_0_seg_1, path_0_seg_3=1",
		"thickness": "3",
		"dpi":       "96",
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if got := resp.Header.Get("X-Tabfit-Adjusted"); got != "2" {
		t.Errorf("X-Tabfit-Adjusted = %q, want 2", got)
	}
	if _, err := uuid.Parse(resp.Header.Get("X-Tabfit-Batch")); err != nil {
		t.Errorf("bad batch id: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if n := len(reload(t, data)); n != 9 {
		t.Errorf("response has %d segments, want 9", n)
	}
}

func TestServerInspect(t *testing.T) {
	app := NewServer(&ServerConfig{}, nil)
	resp, err := app.Test(upload(t, "/inspect", slotSVG, map[string]string{"marks": "path_0_seg_1,path_0_seg_3"}))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rep Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if len(rep.Segments) != 9 || rep.Segments[2].Kind != "tab-connector" {
		t.Errorf("Segments = %+v", rep.Segments)
	}
	if len(rep.Shapes) != 1 {
		t.Errorf("Shapes = %+v", rep.Shapes)
	}
}

func TestServerErrors(t *testing.T) {
	cases := []struct {
		name   string
		svg    string
		fields map[string]string
		want   int
	}{
		{"no file", "", nil, http.StatusBadRequest},
		{"bad dpi", slotSVG, map[string]string{"dpi": "0"}, http.StatusUnprocessableEntity},
		{"unparsable thickness", slotSVG, map[string]string{"thickness": "thick"}, http.StatusBadRequest},
		{"unknown segment", slotSVG, map[string]string{"marks": "nope"}, http.StatusUnprocessableEntity},
		{"curve", slotSVG, map[string]string{"marks": "path_1_seg_0=2"}, http.StatusUnprocessableEntity},
		{"bad multiplier", slotSVG, map[string]string{"marks": "path_0_seg_1=5"}, http.StatusUnprocessableEntity},
		{"bad svg", "<svg", nil, http.StatusBadRequest},
	}
	app := NewServer(&ServerConfig{}, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(upload(t, "/adjust", tc.svg, tc.fields))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["error"] == "" {
				t.Errorf("error body = %v, %v", body, err)
			}
		})
	}
}
