package protocol

import "testing"

func TestStartInfoEncoding(t *testing.T) {
	s, err := EncodeInfo(NewStartInfo("/models/golomb/golomb_8.fzn", 17, true))
	if err != nil { t.Fatalf("encode: %v", err) }
	if s != `{"has_restarts":true,"name":"golomb_8.fzn","execution_id":17}` { t.Fatalf("info = %s", s) }
	var back StartInfo
	if err := DecodeInfo(s, &back); err != nil { t.Fatalf("decode: %v", err) }
	if back.Name != "golomb_8.fzn" || back.ExecutionID != 17 || !back.HasRestarts { t.Fatalf("decoded %+v", back) }
}

func TestRestartInfoEncoding(t *testing.T) {
	s, err := EncodeInfo(RestartInfo{RestartID: 4})
	if err != nil || s != `{"restart_id":4}` { t.Fatalf("info = %s, %v", s, err) }
}

func TestStartInfoBareName(t *testing.T) {
	if n := NewStartInfo("model.mzn", 0, false).Name; n != "model.mzn" { t.Fatalf("name = %q", n) }
	if n := NewStartInfo("", 0, false).Name; n != "" { t.Fatalf("empty name = %q", n) }
}
