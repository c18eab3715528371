package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/sugarsignal/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestModelInfoJSON(t *testing.T) {
	Convey("Given model info", t, func() {
		info := types.ModelInfo{
			Kind:     "linear",
			Features: []string{"Pregnancies"},
			Classes:  []int{0, 1},
			Digest:   "abc",
			LoadedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}

		Convey("When encoding it", func() {
			data, err := json.Marshal(info)
			So(err, ShouldBeNil)

			Convey("Then it should use snake case keys", func() {
				var m map[string]any
				So(json.Unmarshal(data, &m), ShouldBeNil)
				So(m, ShouldContainKey, "loaded_at")
				So(m["loaded_at"], ShouldEqual, "2024-01-02T03:04:05Z")
				So(m["kind"], ShouldEqual, "linear")
			})
		})
	})
}

func TestStatsJSON(t *testing.T) {
	Convey("Given stats for a service that has not started", t, func() {
		data, err := json.Marshal(types.Stats{})
		So(err, ShouldBeNil)

		Convey("Then the model kind should be omitted", func() {
			var m map[string]any
			So(json.Unmarshal(data, &m), ShouldBeNil)
			So(m, ShouldNotContainKey, "model_kind")
			So(m["started"], ShouldEqual, false)
		})
	})
}
