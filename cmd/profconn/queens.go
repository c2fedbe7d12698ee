package main

import (
	"fmt"

	"github.com/chocoteam/cpp-integration/pkg/connector"
	"github.com/chocoteam/cpp-integration/pkg/protocol"
)

// queens is a plain backtracking n-queens search that reports every node it
// visits. Each branch node has one child per column of the next row.
type queens struct {
	n         int
	c         *connector.Connector
	next      int32
	cols      []int
	solutions int
}

func solveQueens(c *connector.Connector, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("board size must be positive, got %d", n)
	}
	q := &queens{n: n, c: c, cols: make([]int, 0, n)}
	root := q.id()
	if err := c.CreateNode(root, -1, 0, -1, int32(n), protocol.StatusBranch).SetLabel("root").Send(); err != nil {
		return 0, err
	}
	err := q.expand(root)
	return q.solutions, err
}

func (q *queens) id() int32 {
	id := q.next
	q.next++
	return id
}

func (q *queens) safe(col int) bool {
	row := len(q.cols)
	for r, c := range q.cols {
		if c == col || c-col == row-r || col-c == row-r {
			return false
		}
	}
	return true
}

func (q *queens) expand(parent int32) error {
	row := len(q.cols)
	for col := 0; col < q.n; col++ {
		id := q.id()
		label := fmt.Sprintf("q%d=%d", row, col)
		if !q.safe(col) {
			err := q.c.CreateNode(id, parent, 0, int32(col), 0, protocol.StatusFailed).
				SetLabel(label).
				SetNogood(fmt.Sprintf("q%d!=%d", row, col)).
				Send()
			if err != nil {
				return err
			}
			continue
		}

		q.cols = append(q.cols, col)
		var err error
		if row+1 == q.n {
			q.solutions++
			var info string
			info, err = protocol.EncodeInfo(map[string][]int{"queens": q.cols})
			if err == nil {
				err = q.c.CreateNode(id, parent, 0, int32(col), 0, protocol.StatusSolved).
					SetLabel(label).SetInfo(info).Send()
			}
		} else {
			err = q.c.CreateNode(id, parent, 0, int32(col), int32(q.n), protocol.StatusBranch).
				SetLabel(label).Send()
			if err == nil {
				err = q.expand(id)
			}
		}
		q.cols = q.cols[:row]
		if err != nil {
			return err
		}
	}
	return nil
}
