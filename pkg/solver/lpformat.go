package solver

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/l7mp/refinery/pkg/model"
)

// lpLineWidth is the soft limit of an LP file line; CPLEX LP readers reject very long lines.
const lpLineWidth = 200

// ColumnName is the LP-file name of a variable. Entity identifiers may contain characters the
// LP format does not allow, so columns are named by handle.
func ColumnName(id model.VarID) string { return "x" + strconv.Itoa(int(id)) }

// WriteLP writes the model in CPLEX LP format. Bilinear terms are written in the quadratic
// bracket syntax, two-sided ranges are split into a "_lo" and a "_hi" row.
func WriteLP(w io.Writer, m *model.Model) error {
	if m.Objective == nil {
		return ErrNoObjective
	}
	bw := bufio.NewWriter(w)
	lw := &lineWriter{w: bw}

	fmt.Fprintf(bw, "\\ model %s (%s)\n", m.Name, m.ID)
	if m.Objective.Sense == model.Maximize {
		bw.WriteString("Maximize\n")
	} else {
		bw.WriteString("Minimize\n")
	}
	lw.start(" " + m.Objective.Name + ":")
	writeExpr(lw, m.Objective.Expr, true)
	lw.end()

	bw.WriteString("Subject To\n")
	for i, c := range m.Constraints {
		name := "c" + strconv.Itoa(i)
		shift := c.Body.Constant
		row := func(suffix, op string, rhs float64) {
			lw.start(" " + name + suffix + ":")
			writeExpr(lw, c.Body, false)
			lw.token(op)
			lw.token(num(rhs - shift))
			lw.end()
		}
		switch c.Comparator() {
		case model.Equal:
			row("", "=", c.Upper)
		case model.LessEqual:
			row("", "<=", c.Upper)
		case model.GreaterEqual:
			row("", ">=", c.Lower)
		case model.Range:
			row("_lo", ">=", c.Lower)
			row("_hi", "<=", c.Upper)
		}
	}

	bw.WriteString("Bounds\n")
	var binaries []string
	for _, v := range m.Variables {
		name := ColumnName(v.ID)
		loInf, hiInf := math.IsInf(v.Lower, -1), math.IsInf(v.Upper, 1)
		switch {
		case v.IsInteger():
			binaries = append(binaries, name)
		case loInf && hiInf:
			fmt.Fprintf(bw, " %s free\n", name)
		case loInf:
			fmt.Fprintf(bw, " -inf <= %s <= %s\n", name, num(v.Upper))
		case hiInf && v.Lower != 0:
			fmt.Fprintf(bw, " %s >= %s\n", name, num(v.Lower))
		case !hiInf:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", num(v.Lower), name, num(v.Upper))
		}
	}

	if len(binaries) > 0 {
		bw.WriteString("Binaries\n")
		for _, b := range binaries {
			fmt.Fprintf(bw, " %s\n", b)
		}
	}
	bw.WriteString("End\n")

	if lw.err != nil {
		return lw.err
	}
	return bw.Flush()
}

// writeExpr writes the variable part of an expression. The objective needs the "/ 2" form of the
// quadratic bracket, constraints do not.
func writeExpr(lw *lineWriter, e *model.Expr, objective bool) {
	if e.IsZero() {
		lw.token("0")
		lw.token(ColumnName(0))
		return
	}
	for i, t := range e.Terms {
		lw.token(signed(t.Coef, i == 0) + " " + ColumnName(t.Var))
	}
	if len(e.Products) == 0 {
		return
	}
	if len(e.Terms) > 0 {
		lw.token("+")
	}
	lw.token("[")
	for i, p := range e.Products {
		coef := p.Coef
		if objective {
			coef *= 2
		}
		if p.A == p.B {
			lw.token(signed(coef, i == 0) + " " + ColumnName(p.A) + " ^ 2")
			continue
		}
		lw.token(signed(coef, i == 0) + " " + ColumnName(p.A) + " * " + ColumnName(p.B))
	}
	lw.token("]")
	if objective {
		lw.token("/ 2")
	}
}

func signed(coef float64, first bool) string {
	switch {
	case coef < 0:
		return "- " + num(-coef)
	case first:
		return num(coef)
	default:
		return "+ " + num(coef)
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// lineWriter wraps long rows.
type lineWriter struct {
	w   *bufio.Writer
	n   int
	err error
}

func (l *lineWriter) start(s string) {
	l.write(s)
	l.n = len(s)
}

func (l *lineWriter) token(s string) {
	if l.n+len(s)+1 > lpLineWidth {
		l.write("\n  ")
		l.n = 2
	}
	l.write(" " + s)
	l.n += len(s) + 1
}

func (l *lineWriter) end() {
	l.write("\n")
	l.n = 0
}

func (l *lineWriter) write(s string) {
	if l.err != nil {
		return
	}
	_, l.err = l.w.WriteString(s)
}
