package util

import (
	"regexp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("rule:name?.lua"), ShouldEqual, "rule_name_.lua")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("rule__name.lua"), ShouldEqual, "rule_name.lua")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-rule-name-"), ShouldEqual, "rule-name")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "result", "results"), ShouldEqual, "1 result")
		So(Quantify(2, "result", "results"), ShouldEqual, "2 results")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("cache"), ShouldEqual, "Cache")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`(?P<season>\d+) сезон (?P<episode>\d+) серия`)
		groups := ReGroups(re, "2 сезон 5 серия")
		So(groups["season"], ShouldEqual, "2")
		So(groups["episode"], ShouldEqual, "5")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/rule.lua"), ShouldEqual, "rule")
		So(FileStem("rule"), ShouldEqual, "rule")
	})
}

func TestMax(t *testing.T) {
	Convey("Max", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Max[int](), ShouldEqual, 0)
	})
}
