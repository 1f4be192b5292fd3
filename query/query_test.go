package query

import (
	"testing"

	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

func TestSuggest(t *testing.T) {
	Convey("Given a remembered query history", t, func() {
		So(Remember("кухня", 1), ShouldBeNil)
		So(Remember("кухня", 1), ShouldBeNil)
		So(Remember("китчен блюз", 1), ShouldBeNil)
		suggestionCache = make(map[string][]*queryRecord)

		Convey("Suggestions are ranked by popularity", func() {
			suggestions := SuggestMany("к")
			So(len(suggestions), ShouldBeGreaterThanOrEqualTo, 2)
			So(suggestions[0], ShouldEqual, "кухня")
		})

		Convey("Input is sanitized before matching", func() {
			suggestions := SuggestMany("  КУХ  ")
			So(len(suggestions), ShouldBeGreaterThanOrEqualTo, 1)
			So(suggestions[0], ShouldEqual, "кухня")
		})

		Convey("No match yields no suggestions", func() {
			So(SuggestMany("шерлок"), ShouldBeEmpty)
		})

		Convey("Suggestions can be disabled", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			defer viper.Set(key.SearchShowQuerySuggestions, true)

			So(SuggestMany("кух"), ShouldBeEmpty)
		})
	})
}
