package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/sugarsignal/internal/adapters/artifact"
	service "github.com/okian/sugarsignal/internal/app"
	"github.com/okian/sugarsignal/internal/domain/model"
	"github.com/okian/sugarsignal/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const shippedModel = "../../models/diabetes_model.json"

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service loading the shipped model from disk", t, func() {
		ctx := context.Background()
		src, err := artifact.Open(ctx, shippedModel)
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithSource(src),
			service.WithCacheSize(16),
			service.WithLogger(logger.Discard()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many goroutines predict the same inputs concurrently", func() {
			inputs := []model.InputData{lowRisk, highRisk, zeros}
			const workers = 16
			results := make([][]int, workers)

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for _, in := range inputs {
						resp, err := svc.Predict(ctx, in)
						if err != nil {
							results[w] = append(results[w], -1)
							continue
						}
						results[w] = append(results[w], resp.Prediction)
					}
				}(w)
			}
			wg.Wait()

			Convey("Then every goroutine should see the same labels", func() {
				for _, r := range results {
					So(r, ShouldResemble, []int{0, 1, 0})
				}
				So(svc.GetStats().Predictions, ShouldEqual, workers*len(inputs))
			})
		})

		Convey("When stopping and starting again", func() {
			svc.Stop()
			So(svc.Ready(), ShouldBeFalse)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then predictions should work again", func() {
				resp, err := svc.Predict(ctx, highRisk)
				So(err, ShouldBeNil)
				So(resp.Prediction, ShouldEqual, 1)
			})
		})
	})
}
