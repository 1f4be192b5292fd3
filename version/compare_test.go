package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		Convey("Should detect a newer version", func() {
			result, err := Compare("v1.2.0", "v1.1.9")
			So(err, ShouldBeNil)
			So(result, ShouldEqual, 1)
		})

		Convey("Should detect an older version", func() {
			result, err := Compare("0.9.0", "1.0.0")
			So(err, ShouldBeNil)
			So(result, ShouldEqual, -1)
		})

		Convey("Should treat equal versions as equal", func() {
			result, err := Compare("v2.0.1", "2.0.1")
			So(err, ShouldBeNil)
			So(result, ShouldEqual, 0)
		})

		Convey("Should reject malformed versions", func() {
			_, err := Compare("latest", "1.0.0")
			So(err, ShouldNotBeNil)
		})
	})
}
