package config

import (
	"testing"

	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should carry sane detection defaults", func() {
			_ = Setup()
			So(viper.GetInt(key.DetectorDebounce), ShouldBeGreaterThan, 0)
			So(viper.GetInt(key.DetectorCooldown), ShouldBeGreaterThan, 0)
			So(viper.GetInt(key.CacheCapacity), ShouldBeGreaterThan, 0)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("detector.poll_interval")
			So(result, ShouldEqual, "detector_poll_interval")
		})
	})
}
