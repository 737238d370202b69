package swarm

import (
	"fmt"
	"strings"

	"github.com/Ksonar262/RFID"
)

const (
	// TblParticles is the name of the sql database table that contains
	// evaluated positions and values for particles for each iteration.
	TblParticles = "rfid_particles"
	// TblBest is the name of the sql database table that contains the best
	// placement for the entire swarm at each iteration.
	TblBest = "rfid_best"
)

func (it *Iterator) ants() int {
	if len(it.Pop) == 0 {
		return 0
	}
	return it.Pop[0].Len()
}

// xdbsql renders the per-antenna column list for op: "define" for table
// definitions, "x" for column names and "?" for placeholders.
func (it *Iterator) xdbsql(op string) string {
	var b strings.Builder
	for i := 0; i < it.ants(); i++ {
		switch op {
		case "?":
			b.WriteString(",?,?")
		case "define":
			fmt.Fprintf(&b, ",r%d INTEGER,c%d INTEGER", i, i)
		case "x":
			fmt.Fprintf(&b, ",r%d,c%d", i, i)
		default:
			panic("invalid db op " + op)
		}
	}
	return b.String()
}

func (it *Iterator) initdb() error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblParticles + " (run TEXT, particle INTEGER, iter INTEGER, val REAL" + it.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblBest + " (run TEXT, iter INTEGER, val REAL" + it.xdbsql("define") + ");",
	}
	for _, s := range stmts {
		if _, err := it.Db.Exec(s); err != nil {
			return fmt.Errorf("swarm: create trace table: %w", err)
		}
	}
	it.dbready = true
	return nil
}

func cellArgs(args []any, p rfid.Placement) []any {
	for _, c := range p {
		args = append(args, c.Row, c.Col)
	}
	return args
}

// updateDb writes the evaluated population and the incumbent best for the
// current iteration in one transaction.
func (it *Iterator) updateDb() (err error) {
	if it.Db == nil {
		return nil
	}
	if !it.dbready {
		if err := it.initdb(); err != nil {
			return err
		}
	}

	tx, err := it.Db.Begin()
	if err != nil {
		return fmt.Errorf("swarm: begin trace: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	run := it.run.String()
	s0 := "INSERT INTO " + TblParticles + " (run,particle,iter,val" + it.xdbsql("x") + ") VALUES (?,?,?,?" + it.xdbsql("?") + ");"
	for _, p := range it.Pop {
		args := []any{run, p.Id, it.count, p.Val}
		args = cellArgs(args, p.Pos())
		if _, err = tx.Exec(s0, args...); err != nil {
			return fmt.Errorf("swarm: trace particle %d: %w", p.Id, err)
		}
	}

	s1 := "INSERT INTO " + TblBest + " (run,iter,val" + it.xdbsql("x") + ") VALUES (?,?,?" + it.xdbsql("?") + ");"
	glob := it.best
	args := []any{run, it.count, glob.Val}
	args = cellArgs(args, glob.Pos())
	if _, err = tx.Exec(s1, args...); err != nil {
		return fmt.Errorf("swarm: trace best: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("swarm: commit trace: %w", err)
	}
	return nil
}
