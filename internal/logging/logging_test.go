package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func newTestLogger(verbose, debug bool) (Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return Logger{Verbose: verbose, Debug: debug, Out: &out, Err: &errOut}, &out, &errOut
}

func TestLoggerLevels(t *testing.T) {
	oldNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = oldNoColor }()

	tests := []struct {
		name        string
		verbose     bool
		debug       bool
		wantInfo    bool
		wantDebug   bool
		wantWarn    bool
		wantErrLine bool
	}{
		{name: "Quiet", verbose: false, debug: false},
		{name: "Verbose", verbose: true, wantInfo: true, wantWarn: true},
		{name: "Debug", debug: true, wantInfo: true, wantDebug: true, wantWarn: true, wantErrLine: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, out, errOut := newTestLogger(tt.verbose, tt.debug)

			log.Infof("info %d", 1)
			log.Debugf("debug %s", "x")
			log.Warnf("warn")
			log.Errorf("boom")

			if got := strings.Contains(out.String(), "[info] info 1"); got != tt.wantInfo {
				t.Errorf("info shown = %t, want %t (out: %q)", got, tt.wantInfo, out.String())
			}
			if got := strings.Contains(out.String(), "[debug] debug x"); got != tt.wantDebug {
				t.Errorf("debug shown = %t, want %t (out: %q)", got, tt.wantDebug, out.String())
			}
			if got := strings.Contains(errOut.String(), "[warn] warn"); got != tt.wantWarn {
				t.Errorf("warn shown = %t, want %t (err: %q)", got, tt.wantWarn, errOut.String())
			}
			if got := strings.Contains(errOut.String(), "[error] boom"); got != tt.wantErrLine {
				t.Errorf("error shown = %t, want %t (err: %q)", got, tt.wantErrLine, errOut.String())
			}
		})
	}
}

func TestWarnfAlwaysIgnoresVerbosity(t *testing.T) {
	log, _, errOut := newTestLogger(false, false)
	log.WarnfAlways("settings file is world readable")

	if !strings.Contains(errOut.String(), "settings file is world readable") {
		t.Fatalf("expected warning on stderr, got %q", errOut.String())
	}
}

func TestErrorfAndReturn(t *testing.T) {
	log, _, _ := newTestLogger(false, false)
	err := log.ErrorfAndReturn("failed to load %s: %v", "appSettings.json", "bad json")
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "failed to load appSettings.json: bad json" {
		t.Errorf("unexpected error text %q", err.Error())
	}
}
