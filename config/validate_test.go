package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/reel-cli/reel/key"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Validate", t, func() {
		Convey("Defaults should all be valid", func() {
			for k, field := range Default {
				So(Validate(k, field.Value), ShouldBeNil)
			}
		})

		Convey("Volume should stay within percent bounds", func() {
			So(Validate(key.PlayerDefaultVolume, 100), ShouldBeNil)
			So(errors.Is(Validate(key.PlayerDefaultVolume, 101), ErrInvalidValue), ShouldBeTrue)
			So(errors.Is(Validate(key.PlayerDefaultVolume, -1), ErrInvalidValue), ShouldBeTrue)
		})

		Convey("Skip and timeout should be positive", func() {
			So(Validate(key.PlayerSkipSeconds, 0), ShouldNotBeNil)
			So(Validate(key.CatalogTimeout, 0), ShouldNotBeNil)
			So(Validate(key.PlayerControlsLeaveDelay, 0), ShouldBeNil)
		})

		Convey("Service URLs should be absolute http URLs", func() {
			So(Validate(key.CatalogBaseURL, "https://lookup.example"), ShouldBeNil)
			So(Validate(key.CatalogBaseURL, "lookup.example"), ShouldNotBeNil)
			So(Validate(key.SubtitlesBaseURL, "ftp://subs.example"), ShouldNotBeNil)
		})

		Convey("Subtitle language should be a language code", func() {
			So(Validate(key.SubtitlesLanguage, "pt-BR"), ShouldBeNil)
			So(Validate(key.SubtitlesLanguage, "not a language"), ShouldNotBeNil)
		})

		Convey("Log level and icons should be known names", func() {
			So(Validate(key.LogsLevel, "debug"), ShouldBeNil)
			So(Validate(key.LogsLevel, "loud"), ShouldNotBeNil)
			So(Validate(key.IconsVariant, "nerd"), ShouldBeNil)
			So(Validate(key.IconsVariant, "ascii"), ShouldNotBeNil)
		})

		Convey("mpv args should not override the IPC wiring", func() {
			So(Validate(key.PlayerMpvArgs, []string{"--vo=gpu", "--hwdec=auto"}), ShouldBeNil)
			So(Validate(key.PlayerMpvArgs, []string{"--input-ipc-server=/tmp/x"}), ShouldNotBeNil)
			So(Validate(key.PlayerMpvArgs, []string{"--idle"}), ShouldNotBeNil)
			So(Validate(key.PlayerMpvArgs, []string{"vo=gpu"}), ShouldNotBeNil)
		})

		Convey("Keys without a rule should accept anything", func() {
			So(Validate(key.HistorySave, false), ShouldBeNil)
		})
	})

	Convey("Section", t, func() {
		So(Section(key.PlayerDefaultVolume), ShouldEqual, "Playback")
		So(Section(key.TUIMouse), ShouldEqual, "Terminal interface")

		Convey("Every key should belong to a titled section", func() {
			for k := range Default {
				prefix, _, _ := strings.Cut(k, ".")
				_, ok := Sections[prefix]
				So(ok, ShouldBeTrue)
			}
		})
	})
}

