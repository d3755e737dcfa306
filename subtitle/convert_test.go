package subtitle

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sample = "1\n00:00:01,000 --> 00:00:02,500\nHello there.\n- General Kenobi!\n\n2\n00:01:00,040 --> 00:01:03,999\n<i>Second</i>\n"

func TestConvert(t *testing.T) {
	Convey("Given SubRip text", t, func() {
		out := Convert(sample)

		Convey("It should start with the WebVTT header", func() {
			So(out, ShouldStartWith, "WEBVTT\n\n")
		})

		Convey("Timestamps should use a dot before milliseconds", func() {
			So(out, ShouldContainSubstring, "00:00:01.000 --> 00:00:02.500")
			So(out, ShouldContainSubstring, "00:01:00.040 --> 00:01:03.999")
			So(out, ShouldNotContainSubstring, ",")
		})

		Convey("Cue index and every text line should be preserved", func() {
			So(out, ShouldEqual, "WEBVTT\n\n"+
				"1\n00:00:01.000 --> 00:00:02.500\nHello there.\n- General Kenobi!\n\n"+
				"2\n00:01:00.040 --> 00:01:03.999\n<i>Second</i>")
			So(CueCount(out), ShouldEqual, 2)
		})

		Convey("Converting twice should give the same answer", func() {
			So(Convert(sample), ShouldEqual, out)
			So(Convert(out), ShouldEqual, out)
		})
	})

	Convey("Given CRLF input with a malformed cue", t, func() {
		in := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nfirst\r\n\r\norphan\r\n\r\n3\r\n00:00:05,000 --> 00:00:06,000\r\nthird\r\n"
		out := Convert(in)

		Convey("The single-line block should be skipped", func() {
			So(out, ShouldNotContainSubstring, "orphan")
			So(CueCount(out), ShouldEqual, 2)
			So(out, ShouldContainSubstring, "3\n00:00:05.000 --> 00:00:06.000\nthird")
		})
	})

	Convey("Given empty input", t, func() {
		So(Convert(""), ShouldEqual, Header)
		So(CueCount(Convert("")), ShouldEqual, 0)
	})
}
