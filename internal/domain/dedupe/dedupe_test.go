package dedupe_test

import (
	"testing"

	dedupe "github.com/okian/trainlog/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

type rec struct {
	score int
	tag   string
}

func higherScore(c, cur rec) bool { return c.score > cur.score }

func TestKeeper(t *testing.T) {
	Convey("Given a new Keeper", t, func() {
		k := dedupe.NewKeeper[string](higherScore, dedupe.WithCapacity(8))

		Convey("Then it starts empty", func() {
			So(k.Size(), ShouldEqual, 0)
			So(k.Values(), ShouldBeEmpty)
			_, ok := k.Get("a")
			So(ok, ShouldBeFalse)
		})

		Convey("When distinct keys are offered", func() {
			So(k.Offer("a", rec{1, "a1"}), ShouldBeFalse)
			So(k.Offer("b", rec{1, "b1"}), ShouldBeFalse)

			Convey("Then each key is kept in first-seen order", func() {
				So(k.Size(), ShouldEqual, 2)
				vals := k.Values()
				So(vals[0].tag, ShouldEqual, "a1")
				So(vals[1].tag, ShouldEqual, "b1")
				So(k.Collapsed(), ShouldEqual, 0)
			})
		})

		Convey("When a key repeats", func() {
			k.Offer("a", rec{2, "first"})
			seen := k.Offer("a", rec{1, "worse"})
			k.Offer("a", rec{3, "best"})

			Convey("Then only the better record survives", func() {
				So(seen, ShouldBeTrue)
				So(k.Size(), ShouldEqual, 1)
				v, ok := k.Get("a")
				So(ok, ShouldBeTrue)
				So(v.tag, ShouldEqual, "best")
				So(k.Collapsed(), ShouldEqual, 2)
				So(k.Replaced(), ShouldEqual, 1)
			})
		})

		Convey("When many rows share few keys", func() {
			for i := 0; i < 1000; i++ {
				k.Offer([]string{"x", "y"}[i%2], rec{i, "r"})
			}

			Convey("Then size tracks keys, not rows", func() {
				So(k.Size(), ShouldEqual, 2)
				So(k.Collapsed(), ShouldEqual, 998)
			})
		})
	})
}
