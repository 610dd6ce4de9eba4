package types_test

import (
	"testing"

	types "github.com/okian/trainlog/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestZoneSet(t *testing.T) {
	Convey("Given a zone mapping", t, func() {
		m := map[string]types.ZoneBounds{
			"z3": {LowerPct: 75, UpperPct: 90},
			"z1": {LowerPct: 0, UpperPct: 55},
			"z2": {LowerPct: 55, UpperPct: 75},
		}

		Convey("When it is turned into a set", func() {
			zs := types.NewZoneSet(m)

			Convey("Then zones are ordered by lower bound", func() {
				So(zs.IDs(), ShouldResemble, []string{"z1", "z2", "z3"})
				So(zs[1].UpperPct, ShouldEqual, 75)
			})

			Convey("And converting back is lossless", func() {
				So(zs.Map(), ShouldResemble, m)
			})
		})

		Convey("When the mapping is empty", func() {
			So(types.NewZoneSet(nil), ShouldBeEmpty)
		})
	})
}
