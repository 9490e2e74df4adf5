package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/okian/formcheck/internal/adapters/pose"
	"github.com/okian/formcheck/internal/domain/body"
	"github.com/okian/formcheck/internal/domain/skills"
	"github.com/okian/formcheck/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeExtractor struct {
	frame   body.Frame
	err     error
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *fakeExtractor) Extract(ctx context.Context, image []byte) (pose.Extraction, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return pose.Extraction{}, ctx.Err()
		}
	}
	if f.err != nil {
		return pose.Extraction{}, f.err
	}
	return pose.Extraction{Landmarks: f.frame, AnnotatedImage: []byte("annotated:" + string(image))}, nil
}

type fakeElaborator struct {
	fail  bool
	calls atomic.Int32
}

func (f *fakeElaborator) Elaborate(_ context.Context, summary string) (string, error) {
	f.calls.Add(1)
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	return "**SHORT SUMMARY:**\n" + summary + "\n\n**IN-DEPTH ANALYSIS:**\nKeep going.", nil
}

func polar(origin body.Point, r, deg float64) body.Point {
	rad := deg * math.Pi / 180
	return body.Point{X: origin.X + r*math.Cos(rad), Y: origin.Y + r*math.Sin(rad)}
}

// tuckPlanche places the left side with a 45 degree shoulder, straight arm,
// 60 degree hip and 45 degree knee.
func tuckPlanche() body.Frame {
	shoulder := body.Point{}
	hip := body.Point{X: 100}
	knee := polar(hip, 50, 120)
	return body.Frame{
		skills.LeftShoulder: shoulder,
		skills.LeftElbow:    polar(shoulder, 50, 45),
		skills.LeftWrist:    polar(shoulder, 100, 45),
		skills.LeftHip:      hip,
		skills.LeftKnee:     knee,
		skills.LeftAnkle:    polar(knee, 50, 345),
	}
}

// bentArms is tuckPlanche with the elbow bent to 90 degrees.
func bentArms() body.Frame {
	f := tuckPlanche()
	elbow := f[skills.LeftElbow]
	f[skills.LeftWrist] = polar(elbow, 50, 135)
	return f
}
