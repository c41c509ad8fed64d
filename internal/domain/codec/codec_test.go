package codec_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/evalsync/internal/domain/codec"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCodecContract(t *testing.T) {
	Convey("Given JSON-representable values", t, func() {
		cases := []string{
			`null`,
			`true`,
			`"plain"`,
			`"<a href=\"x\">&amp;</a>"`,
			`0`,
			`-12`,
			`3.14159`,
			`1e-7`,
			`12345678901234567890`,
			`[]`,
			`{}`,
			`[[],[[]],[1,[2,[3,null]]]]`,
			`{"a":{},"b":[],"c":null,"d":{"e":[{"f":1.50}]}}`,
			`["https://example.com/a?b=1&c=2","ü"]`,
		}

		for _, in := range cases {
			Convey("When round tripping "+in, func() {
				var v any
				So(codec.Decode(in, &v), ShouldBeNil)

				out, err := codec.Encode(v)
				So(err, ShouldBeNil)

				Convey("Then the encoding should be stable", func() {
					So(out, ShouldEqual, in)

					var again any
					So(codec.Decode(out, &again), ShouldBeNil)
					So(again, ShouldResemble, v)
				})
			})
		}
	})
}

func TestCodecNumbers(t *testing.T) {
	Convey("Given a decoded number", t, func() {
		var v any
		So(codec.Decode(`{"score":0.1000}`, &v), ShouldBeNil)

		Convey("Then it should be kept as json.Number", func() {
			m := v.(map[string]any)
			So(m["score"], ShouldEqual, json.Number("0.1000"))
		})
	})
}

func TestCodecErrors(t *testing.T) {
	Convey("Given malformed input", t, func() {
		Convey("When the text is not JSON", func() {
			var v any
			err := codec.Decode(`{"a":`, &v)

			Convey("Then it should fail with ErrDecode", func() {
				So(errors.Is(err, codec.ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When a value is followed by trailing data", func() {
			var v any
			err := codec.Decode(`[1] [2]`, &v)

			Convey("Then it should fail with ErrDecode", func() {
				So(errors.Is(err, codec.ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the value cannot be encoded", func() {
			_, err := codec.Encode(map[string]any{"c": make(chan int)})

			Convey("Then it should fail with ErrEncode", func() {
				So(errors.Is(err, codec.ErrEncode), ShouldBeTrue)
			})
		})
	})
}

func TestCodecCompact(t *testing.T) {
	Convey("Given raw JSON as it appears in a document file", t, func() {
		raw := json.RawMessage("[\n  {\"z\": 1.50, \"a\": [ {\"url\": \"https://x?a=1&b=<2>\"} ], \"m\": null}\n]")

		Convey("When compacting it", func() {
			out, err := codec.Compact(raw)

			Convey("Then key order and number text should be kept", func() {
				So(err, ShouldBeNil)
				So(string(out), ShouldEqual, `[{"z":1.50,"a":[{"url":"https://x?a=1&b=<2>"}],"m":null}]`)
			})

			Convey("Then it should match what Encode writes to a row", func() {
				s, err := codec.Encode(raw)
				So(err, ShouldBeNil)
				So(s, ShouldEqual, string(out))
			})
		})

		Convey("When the value is absent", func() {
			out, err := codec.Compact(nil)

			Convey("Then it should stay absent", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeNil)
			})
		})

		Convey("When the value is not JSON", func() {
			_, err := codec.Compact(json.RawMessage(`{"a":`))

			Convey("Then it should fail with ErrEncode", func() {
				So(errors.Is(err, codec.ErrEncode), ShouldBeTrue)
			})
		})
	})
}
