package qsim

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("Given a two qubit order", t, func() {
		order := OrderFor([]Qubit{LineQubit(0), LineQubit(1)}, NewCircuit())

		Convey("When allocating a fresh state", func() {
			state := newState(order, Double)

			Convey("Then it is the ground state", func() {
				So(state.Dimension(), ShouldEqual, 4)
				So(state.Amplitudes()[0], ShouldEqual, complex(1, 0))
				So(state.Norm(), ShouldAlmostEqual, 1.0, 1e-12)
			})
		})

		Convey("When setting a full vector", func() {
			state := newState(order, Double)
			err := state.SetVector([]complex128{0, 1, 0, 0})

			Convey("Then the state takes the vector", func() {
				So(err, ShouldBeNil)
				So(state.Probability(1), ShouldAlmostEqual, 1.0, 1e-12)
			})
		})

		Convey("When setting a vector of the wrong length", func() {
			state := newState(order, Double)
			err := state.SetVector([]complex128{1, 0})

			Convey("Then it fails with a dimension mismatch", func() {
				So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
			})
		})

		Convey("When setting a basis state", func() {
			state := newState(order, Double)
			So(state.SetVector([]complex128{0, 0, 1, 0}), ShouldBeNil)
			err := state.SetBasis(3)

			Convey("Then only that amplitude survives", func() {
				So(err, ShouldBeNil)
				So(state.Probability(3), ShouldAlmostEqual, 1.0, 1e-12)
				So(state.Probability(2), ShouldAlmostEqual, 0.0, 1e-12)
			})
		})

		Convey("When setting a basis index outside the space", func() {
			state := newState(order, Double)
			err := state.SetBasis(4)

			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})

		Convey("When cloning", func() {
			state := newState(order, Double)
			clone := state.Clone()
			clone.Amplitudes()[0] = 0

			Convey("Then the original is untouched", func() {
				So(state.Amplitudes()[0], ShouldEqual, complex(1, 0))
			})
		})
	})
}
