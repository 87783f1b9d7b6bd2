package model_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/relation"
)

func TestModel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Model Suite")
}

var _ = Describe("Model", func() {
	var (
		m       *model.Model
		x, y, b model.VarID
	)

	BeforeEach(func() {
		m = model.New("test")
		x = m.AddVariable("FVI", model.NonNegativeReals, "gasoline", "1")
		y = m.AddVariable("FQ", model.Reals, "gasoline", "spg", "1")
		b = m.AddVariable("X", model.Binary, "gasoline", "1")
	})

	It("should declare variables idempotently", func() {
		Expect(m.AddVariable("FVI", model.NonNegativeReals, "gasoline", "1")).To(Equal(x))
		Expect(m.Variables).To(HaveLen(3))
		id, ok := m.Var("FQ", "gasoline", "spg", "1")
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(y))
		_, ok = m.Var("FQ", "gasoline", "ron", "1")
		Expect(ok).To(BeFalse())
		Expect(m.Families()).To(Equal([]string{"FVI", "FQ", "X"}))
	})

	It("should set the domain bounds", func() {
		Expect(m.Variable(x).Lower).To(Equal(0.0))
		Expect(math.IsInf(m.Variable(x).Upper, 1)).To(BeTrue())
		Expect(math.IsInf(m.Variable(y).Lower, -1)).To(BeTrue())
		Expect(m.Variable(b).Upper).To(Equal(1.0))
		Expect(m.Variable(b).IsInteger()).To(BeTrue())
		Expect(m.VarName(x)).To(Equal("FVI(gasoline,1)"))
	})

	It("should normalize expressions", func() {
		e := model.NewExpr().Add(2, x).Add(3, y).Add(-2, x).AddProduct(1, y, x).AddProduct(2, x, y)
		e.Normalize()
		Expect(e.Terms).To(Equal([]model.Term{{Coef: 3, Var: y}}))
		Expect(e.Products).To(HaveLen(1))
		Expect(e.Products[0].Coef).To(Equal(3.0))
		Expect(e.IsLinear()).To(BeFalse())
		Expect(e.Eval([]float64{2, 1, 0})).To(Equal(3.0 + 3*2*1))

		sum := model.NewExpr().Sum(-1, x, y, b)
		Expect(sum.Terms).To(HaveLen(3))
		Expect(sum.Eval([]float64{1, 2, 1})).To(Equal(-4.0))
	})

	It("should classify comparators", func() {
		lhs := model.NewExpr().Add(1, x)
		rhs := model.NewExpr().AddConstant(5)
		Expect(model.NewEquality("eq", relation.Tuple{"1"}, lhs, rhs).Comparator()).To(Equal(model.Equal))
		Expect(model.NewLessEqual("le", relation.Tuple{"1"}, lhs, rhs).Comparator()).To(Equal(model.LessEqual))
		Expect(model.NewRange("ge", nil, 1, lhs, math.Inf(1)).Comparator()).To(Equal(model.GreaterEqual))
		Expect(model.NewRange("rg", nil, 1, lhs, 2).Comparator()).To(Equal(model.Range))
	})

	It("should measure violations", func() {
		c := model.NewEquality("pin", relation.Tuple{"gasoline"}, model.NewExpr().Add(1, x), model.NewExpr().AddConstant(5))
		Expect(c.Key()).To(Equal("pin(gasoline)"))
		Expect(c.Violation([]float64{5, 0, 0})).To(Equal(0.0))
		Expect(c.Violation([]float64{7, 0, 0})).To(Equal(2.0))
		m.AddConstraints(c)
		Expect(m.Violations([]float64{7, 0, 0}, 1e-6)).To(HaveLen(1))
		Expect(m.Violations([]float64{5, 0, 0}, 1e-6)).To(BeEmpty())
		Expect(c.Format(m.VarName)).To(Equal("pin(gasoline): FVI(gasoline,1) - 5 == 0"))
	})

	It("should compute stats", func() {
		m.AddConstraints(
			model.NewEquality("a", relation.Tuple{"1"}, model.NewExpr().Add(1, x), model.NewExpr().Add(1, y)),
			model.NewEquality("a", relation.Tuple{"2"}, model.NewExpr().AddProduct(1, x, y), model.NewExpr()),
			model.NewLessEqual("b", relation.Tuple{"1"}, model.NewExpr().Add(1, b), model.NewExpr().AddConstant(1)),
		)
		m.Skipped["c"] = 2

		st := m.Stats()
		Expect(st.Variables).To(Equal(3))
		Expect(st.Binary).To(Equal(1))
		Expect(st.Continuous).To(Equal(2))
		Expect(st.Constraints).To(Equal(3))
		Expect(st.Bilinear).To(Equal(1))
		Expect(st.ConstraintsByName).To(Equal(map[string]int{"a": 2, "b": 1}))
		Expect(st.ConstraintNames).To(Equal([]string{"a", "b"}))
		Expect(st.SkippedByName).To(HaveKeyWithValue("c", 2))
		Expect(m.IsLinear()).To(BeFalse())

		c, ok := m.Constraint("a", "2")
		Expect(ok).To(BeTrue())
		Expect(c.Body.IsLinear()).To(BeFalse())
		Expect(m.ConstraintsNamed("a")).To(HaveLen(2))
	})
})
