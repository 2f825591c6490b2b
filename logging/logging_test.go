package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogrus(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := Logrus(base)

	l.Debug("upload stub", "name", "v3s-ddr", "size", 1024)
	l.Info("connected")
	l.Error("read failed", "addr", "0x40000000", "orphan")

	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	tests := []struct {
		level  logrus.Level
		msg    string
		fields logrus.Fields
	}{
		{logrus.DebugLevel, "upload stub", logrus.Fields{"name": "v3s-ddr", "size": 1024}},
		{logrus.InfoLevel, "connected", logrus.Fields{}},
		{logrus.ErrorLevel, "read failed", logrus.Fields{"addr": "0x40000000", "!BADKEY": "orphan"}},
	}
	for i, tt := range tests {
		e := entries[i]
		if e.Level != tt.level || e.Message != tt.msg {
			t.Errorf("entry %d = %v %q, want %v %q", i, e.Level, e.Message, tt.level, tt.msg)
		}
		for k, v := range tt.fields {
			if e.Data[k] != v {
				t.Errorf("entry %d field %s = %v, want %v", i, k, e.Data[k], v)
			}
		}
	}
}

func TestLogrusLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.InfoLevel)

	Logrus(base).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message written at info level: %q", buf.String())
	}
}

func TestZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Zap(zap.New(core).Sugar())

	l.Debug("exec", "addr", "0x00008000")
	l.Info("dram ready", "type", "ddr3", "polls", 4)
	l.Error("reset failed")

	all := logs.AllUntimed()
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].Level != zapcore.DebugLevel || all[0].ContextMap()["addr"] != "0x00008000" {
		t.Errorf("debug entry = %+v", all[0])
	}
	if all[1].Message != "dram ready" || all[1].ContextMap()["polls"] != int64(4) {
		t.Errorf("info entry = %+v", all[1])
	}
	if all[2].Level != zapcore.ErrorLevel {
		t.Errorf("error entry level = %v", all[2].Level)
	}
}
