package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chocoteam/cpp-integration/pkg/connector"
	"github.com/chocoteam/cpp-integration/pkg/protocol"
)

// sampleFrames are single messages covering each message type.
func sampleFrames() []struct {
	name string
	msg  protocol.Message
} {
	return []struct {
		name string
		msg  protocol.Message
	}{
		{"frame_done.bin", protocol.MakeDone()},
		{"frame_start.bin", protocol.MakeStart(`{"has_restarts":false,"name":"queens_4","execution_id":0}`)},
		{"frame_restart.bin", protocol.MakeRestart(`{"restart_id":1}`)},
		{"frame_node_branch.bin", protocol.MakeNode(0, -1, 0, -1, 2, protocol.StatusBranch).WithLabel("root")},
		{"frame_node_failed.bin", protocol.MakeNode(1, 0, 0, 0, 0, protocol.StatusFailed).WithLabel("x=1").WithNogood("x!=1")},
		{"frame_node_solved.bin", protocol.MakeNode(2, 0, 0, 1, 0, protocol.StatusSolved).WithInfo(`{"x":2}`)},
	}
}

func framesCmd(a *app) *cobra.Command {
	var (
		outDir string
		n      int
	)

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Write sample frames to disk",
		Long: `Write one framed message per type, plus a whole n-queens session
as a single stream, for use as decoder fixtures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, s := range sampleFrames() {
				if err := writeOut(outDir, s.name, protocol.EncodeFrame(protocol.Marshal(s.msg))); err != nil {
					return err
				}
			}

			p := filepath.Join(outDir, fmt.Sprintf("session_queens_%d.bin", n))
			f, err := os.Create(p)
			if err != nil {
				return err
			}
			c := connector.New(connector.Options{Strict: true, Logger: a.log})
			if err := c.Attach(f); err != nil {
				_ = f.Close()
				return err
			}
			err = c.Start(fmt.Sprintf("queens_%d", n), 0, false)
			if err == nil {
				_, err = solveQueens(c, n)
			}
			if err == nil {
				err = c.Done()
			}
			c.Disconnect()
			if err != nil {
				return err
			}
			st, err := os.Stat(p)
			if err != nil {
				return err
			}
			fmt.Printf("%-28s %6d bytes\n", filepath.Base(p), st.Size())
			fmt.Println("Generated frames in", outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "testdata/frames", "Output directory")
	cmd.Flags().IntVarP(&n, "queens", "n", 4, "Board size of the sample session")

	return cmd
}

func writeOut(dir, name string, b []byte) error {
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		return err
	}
	fmt.Printf("%-28s %6d bytes  head: %s\n", name, len(b), shortHex(b, 24))
	return nil
}

func shortHex(b []byte, n int) string {
	if len(b) == 0 {
		return ""
	}
	if n > len(b) {
		n = len(b)
	}
	enc := hex.EncodeToString(b[:n])
	var out []string
	for i := 0; i < len(enc); i += 8 {
		j := min(i+8, len(enc))
		out = append(out, enc[i:j])
	}
	s := strings.Join(out, " ")
	if len(b) > n {
		s += " ..."
	}
	return s
}
