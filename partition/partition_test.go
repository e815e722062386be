package partition

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSplitEven(t *testing.T) {
	Convey("Given Nx=3, Nr=4 split across 3 workers (no remainder)", t, func() {
		ranges := Split(3, 4, 2)

		Convey("Each partition gets an equal logical size of 4", func() {
			So(len(ranges), ShouldEqual, 3)
			for _, r := range ranges {
				So(r.Size, ShouldEqual, 4)
			}
		})

		Convey("Offsets are 0, 4, 8", func() {
			So(ranges[0].Offset, ShouldEqual, 0)
			So(ranges[1].Offset, ShouldEqual, 4)
			So(ranges[2].Offset, ShouldEqual, 8)
		})

		Convey("The partitions exactly tile the logical space with no gaps or overlaps", func() {
			So(ranges[len(ranges)-1].End(), ShouldEqual, 3*4)
		})
	})
}

func TestSplitWithRemainder(t *testing.T) {
	Convey("Given Nx=3, Nr=5 split across 4 workers (remainder of 3)", t, func() {
		ranges := Split(3, 5, 3)

		Convey("Sizes are 4,4,4,3", func() {
			So(len(ranges), ShouldEqual, 4)
			So(ranges[0].Size, ShouldEqual, 4)
			So(ranges[1].Size, ShouldEqual, 4)
			So(ranges[2].Size, ShouldEqual, 4)
			So(ranges[3].Size, ShouldEqual, 3)
		})

		Convey("Offsets are 0,4,8,12", func() {
			So(ranges[0].Offset, ShouldEqual, 0)
			So(ranges[1].Offset, ShouldEqual, 4)
			So(ranges[2].Offset, ShouldEqual, 8)
			So(ranges[3].Offset, ShouldEqual, 12)
		})

		Convey("The partitions exactly tile the logical space", func() {
			So(ranges[len(ranges)-1].End(), ShouldEqual, 3*5)
		})
	})
}

func TestIndexDecoding(t *testing.T) {
	Convey("Given Nr=5", t, func() {
		Convey("Logical index 12 decodes to (x=2, r=2)", func() {
			x, r := Index(12, 5)
			So(x, ShouldEqual, 2)
			So(r, ShouldEqual, 2)
		})
	})
}

func TestSplitSingleWorker(t *testing.T) {
	Convey("Given zero additional workers (driver only)", t, func() {
		ranges := Split(2, 2, 0)

		Convey("The sole partition covers the whole grid", func() {
			So(len(ranges), ShouldEqual, 1)
			So(ranges[0].Offset, ShouldEqual, 0)
			So(ranges[0].Size, ShouldEqual, 4)
		})
	})
}
