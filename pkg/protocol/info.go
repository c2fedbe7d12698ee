package protocol

import (
	"path/filepath"

	"github.com/chocoteam/cpp-integration/pkg/protocol/codec"
)

// StartInfo is the INFO payload of a START message.
type StartInfo struct {
	HasRestarts bool   `json:"has_restarts"`
	Name        string `json:"name"`
	ExecutionID int32  `json:"execution_id"`
}

// RestartInfo is the INFO payload of a RESTART message.
type RestartInfo struct {
	RestartID int32 `json:"restart_id"`
}

// NewStartInfo strips the directory part of filePath.
func NewStartInfo(filePath string, executionID int32, hasRestarts bool) StartInfo {
	name := filePath
	if name != "" {
		name = filepath.Base(filepath.ToSlash(name))
	}
	return StartInfo{HasRestarts: hasRestarts, Name: name, ExecutionID: executionID}
}

// EncodeInfo renders v as the compact JSON object the profiler parses.
func EncodeInfo(v any) (string, error) {
	b, err := codec.JSON().Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeInfo parses an INFO payload produced by EncodeInfo.
func DecodeInfo(info string, v any) error {
	return codec.JSON().Unmarshal([]byte(info), v)
}
