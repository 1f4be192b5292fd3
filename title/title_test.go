package title

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Normalize", t, func() {
		Convey("Should lowercase and trim", func() {
			So(Normalize("  Проект Х  "), ShouldEqual, "проект х")
		})
		Convey("Should fold ё to е", func() {
			So(Normalize("Ёлки"), ShouldEqual, "елки")
		})
		Convey("Should collapse internal whitespace", func() {
			So(Normalize("Проект \t  Х"), ShouldEqual, "проект х")
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Match", t, func() {
		Convey("Should match equal titles regardless of case and yo", func() {
			So(Match("Ёлки 2", "елки 2"), ShouldBeTrue)
		})

		Convey("Should match when the catalog title extends the page title", func() {
			So(Match("Проект Х", "Проект Х: Дорвались"), ShouldBeTrue)
		})

		Convey("Should match when the page title extends the catalog title", func() {
			So(Match("Проект Х: Дорвались", "Проект Х"), ShouldBeTrue)
		})

		Convey("Should reject different works", func() {
			So(Match("Проект Х", "Морской бой"), ShouldBeFalse)
		})

		Convey("Should reject empty titles", func() {
			So(Match("", "Проект Х"), ShouldBeFalse)
			So(Match("Проект Х", ""), ShouldBeFalse)
		})
	})
}

func TestSearchBase(t *testing.T) {
	Convey("SearchBase", t, func() {
		Convey("Should strip a year suffix", func() {
			So(SearchBase("Морской бой (2012)"), ShouldEqual, "Морской бой")
		})
		Convey("Should strip a dash-separated subtitle", func() {
			So(SearchBase("Проект Х — смотреть онлайн"), ShouldEqual, "Проект Х")
		})
		Convey("Should strip a season qualifier", func() {
			So(SearchBase("Кухня (2 сезон)"), ShouldEqual, "Кухня")
		})
		Convey("Should strip a part qualifier", func() {
			So(SearchBase("Метод (Часть 2)"), ShouldEqual, "Метод")
		})
		Convey("Should leave a bare title alone", func() {
			So(SearchBase("Кухня"), ShouldEqual, "Кухня")
		})
	})
}
