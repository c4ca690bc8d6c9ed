package views_test

import (
	"testing"
	"time"

	"github.com/deevus/gtnh-translator-tui/internal/state"
	"github.com/deevus/gtnh-translator-tui/views"
)

func strPtr(s string) *string { return &s }

func newProgressView() *views.ProgressView {
	return views.NewProgressView(views.ProgressViewParams{
		ServerName: "local",
		URL:        "ws://localhost:8000/ws",
	})
}

func TestProgressView_Draw_Loading(t *testing.T) {
	pv := newProgressView()
	pv.Refresh(state.ViewState{Connection: state.ConnConnecting}, time.Now())

	s, err := pv.Draw(testDrawContext(80, 24))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Size.Height != 24 {
		t.Errorf("expected height=24, got %d", s.Size.Height)
	}
	rows := surfaceText(s)
	if rows[0] != " Connecting to ws://localhost:8000/ws..." {
		t.Errorf("unexpected placeholder %q", rows[0])
	}
	if rows[2] != " q quit  2 translate" {
		t.Errorf("unexpected hint %q", rows[2])
	}
}

func TestProgressView_Draw_Full(t *testing.T) {
	pv := newProgressView()
	pv.Refresh(state.ViewState{
		Connection: state.ConnConnected,
		Progress: state.ProgressSnapshot{
			Completed:          504,
			Total:              1200,
			CurrentKey:         strPtr("item.ingotIron.name"),
			CurrentTranslation: strPtr("Железный слиток"),
			Outcome:            "success",
		},
		LastPair:   &state.TranslationPair{Key: "item.ingotIron.name", Translation: "Железный слиток"},
		Status:     state.Status{Kind: state.StatusServerError, Message: "disk full"},
		Statistics: state.StatisticsSnapshot{TotalEntries: 12000, DictionarySize: 3400, CompletedCount: 560},
	}, time.Now())
	pv.SetStarting(true)

	s, err := pv.Draw(testDrawContext(100, 24))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Size.Width != 100 || s.Size.Height != 24 {
		t.Errorf("unexpected size %dx%d", s.Size.Width, s.Size.Height)
	}
}

func TestProgressView_Draw_Small(t *testing.T) {
	pv := newProgressView()
	pv.Refresh(state.ViewState{Connection: state.ConnDisconnected}, time.Now())

	if _, err := pv.Draw(testDrawContext(20, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProgressView_Waiting(t *testing.T) {
	tests := []struct {
		name  string
		steps []state.ViewState
		want  bool
	}{
		{"initial zero state", []state.ViewState{{}}, true},
		{"connecting", []state.ViewState{{}, {Connection: state.ConnConnecting}}, true},
		{"connected", []state.ViewState{{Connection: state.ConnConnecting}, {Connection: state.ConnConnected}}, false},
		{"attempt failed", []state.ViewState{{Connection: state.ConnConnecting}, {Connection: state.ConnDisconnected}}, false},
		{"statistics before connect", []state.ViewState{{
			Connection: state.ConnConnecting,
			Statistics: state.StatisticsSnapshot{TotalEntries: 10},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pv := newProgressView()
			for _, v := range tt.steps {
				pv.Refresh(v, time.Now())
			}
			if got := pv.Waiting(); got != tt.want {
				t.Errorf("Waiting() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressView_Rate(t *testing.T) {
	pv := newProgressView()
	start := time.Unix(1_700_000_000, 0)

	pv.Refresh(state.ViewState{Progress: state.ProgressSnapshot{Completed: 10, Total: 100}}, start)
	if pv.Rate() != 0 {
		t.Errorf("expected no rate from a single sample, got %v", pv.Rate())
	}

	pv.Refresh(state.ViewState{Progress: state.ProgressSnapshot{Completed: 30, Total: 100}}, start.Add(10*time.Second))
	if pv.Rate() != 2 {
		t.Errorf("expected 2 items/s, got %v", pv.Rate())
	}

	// same count: rate is kept
	pv.Refresh(state.ViewState{Progress: state.ProgressSnapshot{Completed: 30, Total: 100}}, start.Add(11*time.Second))
	if pv.Rate() != 2 {
		t.Errorf("expected rate unchanged, got %v", pv.Rate())
	}

	// new run resets
	pv.Refresh(state.ViewState{Progress: state.ProgressSnapshot{Completed: 0, Total: 50}}, start.Add(12*time.Second))
	if pv.Rate() != 0 {
		t.Errorf("expected rate reset for a new run, got %v", pv.Rate())
	}
}

func TestProgressView_Starting(t *testing.T) {
	pv := newProgressView()
	pv.SetStarting(true)
	if !pv.Starting() {
		t.Error("expected starting")
	}
	pv.SetStarting(false)
	if pv.Starting() {
		t.Error("expected not starting")
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "–"},
		{0.5, "30.0/min"},
		{2.26, "2.3/s"},
		{12, "12.0/s"},
	}
	for _, tt := range tests {
		if got := views.FormatRate(tt.in); got != tt.want {
			t.Errorf("FormatRate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusSegment(t *testing.T) {
	tests := []struct {
		status state.Status
		want   string
	}{
		{state.Status{}, "ready"},
		{state.Status{Kind: state.StatusInfo, Message: "translating"}, "translating"},
		{state.Status{Kind: state.StatusServerError, Message: "disk full"}, "error: disk full"},
		{state.Status{Kind: state.StatusCommandError, Message: "503"}, "start failed: 503"},
	}
	for _, tt := range tests {
		if got := views.StatusSegment(tt.status).Text; got != tt.want {
			t.Errorf("StatusSegment(%+v) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
