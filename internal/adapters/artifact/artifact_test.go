package artifact_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/okian/sugarsignal/internal/adapters/artifact"
	"github.com/smartystreets/goconvey/convey"
)

type fakeS3 struct {
	objects map[string]string
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestFileSource(t *testing.T) {
	convey.Convey("Given a model file on disk", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "model.json")
		convey.So(os.WriteFile(path, []byte(`{"kind":"linear"}`), 0o600), convey.ShouldBeNil)

		convey.Convey("When opening it by plain path", func() {
			src, err := artifact.Open(ctx, path)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then Fetch should return its bytes", func() {
				data, err := src.Fetch(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldEqual, `{"kind":"linear"}`)
				convey.So(src.Name(), convey.ShouldEqual, path)
			})
		})

		convey.Convey("When opening it by file:// uri", func() {
			src, err := artifact.Open(ctx, "file://"+path)
			convey.So(err, convey.ShouldBeNil)
			data, err := src.Fetch(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(data), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("When the file does not exist", func() {
			_, err := artifact.NewFileSource(path + ".missing").Fetch(ctx)

			convey.Convey("Then the error should wrap both kinds", func() {
				convey.So(errors.Is(err, artifact.ErrFetch), convey.ShouldBeTrue)
				convey.So(errors.Is(err, os.ErrNotExist), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := artifact.NewFileSource(path).Fetch(cctx)
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}

func TestS3Source(t *testing.T) {
	convey.Convey("Given an object store holding a model", t, func() {
		ctx := context.Background()
		client := &fakeS3{objects: map[string]string{"models/diabetes/v1.json": `{"kind":"decision_tree"}`}}

		convey.Convey("When opening an s3 uri with an injected client", func() {
			src, err := artifact.Open(ctx, "s3://models/diabetes/v1.json", artifact.WithS3Client(client))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then Fetch should read bucket and key from the uri", func() {
				data, err := src.Fetch(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldEqual, `{"kind":"decision_tree"}`)
				convey.So(client.calls, convey.ShouldResemble, []string{"models/diabetes/v1.json"})
				convey.So(src.Name(), convey.ShouldEqual, "s3://models/diabetes/v1.json")
			})
		})

		convey.Convey("When the key does not exist", func() {
			_, err := artifact.NewS3Source(client, "models", "missing.json").Fetch(ctx)
			convey.So(errors.Is(err, artifact.ErrFetch), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "s3://models/missing.json")
		})
	})
}

func TestOpenRejectsBadURIs(t *testing.T) {
	convey.Convey("Given malformed artifact locations", t, func() {
		ctx := context.Background()
		for _, uri := range []string{"", "   ", "s3://bucket-only", "s3:///key-only", "ftp://host/model.json"} {
			_, err := artifact.Open(ctx, uri, artifact.WithS3Client(&fakeS3{}))
			convey.So(errors.Is(err, artifact.ErrInvalidURI), convey.ShouldBeTrue)
		}
	})
}

func TestDigest(t *testing.T) {
	convey.Convey("Given artifact bytes", t, func() {
		data := []byte("model bytes")
		sum := artifact.Digest(data)

		convey.Convey("Then the digest should be 64 hex characters and stable", func() {
			convey.So(sum, convey.ShouldHaveLength, 64)
			convey.So(artifact.Digest(data), convey.ShouldEqual, sum)
			convey.So(artifact.Digest([]byte("other")), convey.ShouldNotEqual, sum)
		})

		convey.Convey("When verifying against the right digest in any case", func() {
			got, err := artifact.Verify(data, " "+strings.ToUpper(sum)+" ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, sum)
		})

		convey.Convey("When no digest is expected", func() {
			_, err := artifact.Verify(data, "")
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("When verifying against a wrong digest", func() {
			_, err := artifact.Verify(data, strings.Repeat("0", 64))
			convey.So(errors.Is(err, artifact.ErrChecksumMismatch), convey.ShouldBeTrue)
		})
	})
}
