package qsim

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQubitOrder(t *testing.T) {
	Convey("Given a circuit on line qubits", t, func() {
		q0, q1, q2 := LineQubit(0), LineQubit(1), LineQubit(2)
		c := NewCircuit(MomentOf(Op(H, q1), Op(X, q0)))

		Convey("When no explicit order is given", func() {
			order := OrderFor(nil, c)

			Convey("Then circuit qubits appear in their natural order", func() {
				So(order.Len(), ShouldEqual, 2)
				So(order.Qubits()[0], ShouldResemble, q0)
				So(order.Qubits()[1], ShouldResemble, q1)
			})

			Convey("Then the first qubit is the most significant bit", func() {
				So(order.Bit(q0), ShouldEqual, 1)
				So(order.Bit(q1), ShouldEqual, 0)
				So(order.Bit(q2), ShouldEqual, -1)
			})
		})

		Convey("When an explicit order leads with an unused qubit", func() {
			order := OrderFor([]Qubit{q2}, c)

			Convey("Then the unused qubit is still simulated, ahead of the rest", func() {
				So(order.Len(), ShouldEqual, 3)
				So(order.Qubits()[0], ShouldResemble, q2)
				So(order.Bit(q2), ShouldEqual, 2)
			})
		})

		Convey("When the explicit order permutes the circuit qubits", func() {
			order := OrderFor([]Qubit{q1, q0}, c)

			So(order.Bit(q1), ShouldEqual, 1)
			So(order.Bit(q0), ShouldEqual, 0)
		})
	})

	Convey("Given mixed qubit types", t, func() {
		Convey("Then Compare still yields a total order", func() {
			a := NamedQubit("alice")
			b := LineQubit(7)

			So(a.Compare(a), ShouldEqual, 0)
			So(a.Compare(b)*b.Compare(a), ShouldBeLessThanOrEqualTo, 0)
		})
	})
}
