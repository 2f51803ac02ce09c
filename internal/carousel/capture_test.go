package carousel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/testutil"
)

func testCaptureOptions() CaptureOptions {
	return CaptureOptions{
		NewSurfaceWait:  10 * time.Millisecond,
		LoadTimeout:     30 * time.Millisecond,
		SameSurfaceWait: 30 * time.Millisecond,
		RestoreTimeout:  30 * time.Millisecond,
		PollInterval:    2 * time.Millisecond,
	}
}

type noHistorySurface struct {
	*testutil.FakeSurface
}

func (noHistorySurface) NavigateBack(context.Context) error {
	return errors.New("history unavailable")
}

func presented(t *testing.T, surface *testutil.FakeSurface) entity.PresentedSlide {
	t.Helper()
	p, err := NewReader(surface, nil).Read(context.Background())
	require.NoError(t, err)
	return p
}

func TestCaptureOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		slide    testutil.FakeSlide
		wantKind entity.OutcomeKind
		wantDest string
	}{
		{
			name:     "new tab",
			slide:    testutil.FakeSlide{Behavior: testutil.BehaviorNewTab, Destination: "https://example.com/event/1"},
			wantKind: entity.NewSurface,
			wantDest: "https://example.com/event/1",
		},
		{
			name:     "new tab never loads",
			slide:    testutil.FakeSlide{Behavior: testutil.BehaviorNewTabNeverLoads, Destination: "https://example.com/event/2"},
			wantKind: entity.ActionFailed,
		},
		{
			name:     "same tab",
			slide:    testutil.FakeSlide{Behavior: testutil.BehaviorSameTab, Destination: "https://example.com/recruit/3"},
			wantKind: entity.SameSurface,
			wantDest: "https://example.com/recruit/3",
		},
		{
			name:     "no navigation",
			slide:    testutil.FakeSlide{Behavior: testutil.BehaviorNone},
			wantKind: entity.NoNavigation,
		},
		{
			name:     "click error",
			slide:    testutil.FakeSlide{Behavior: testutil.BehaviorError},
			wantKind: entity.ActionFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.slide.Src = "https://cdn.example.com/banner/a.png"
			surface := testutil.NewFakeSurface(origin, tt.slide)
			capturer := NewCapturer(surface, testCaptureOptions(), zaptest.NewLogger(t))

			outcome := capturer.Capture(context.Background(), presented(t, surface))

			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.Equal(t, tt.wantDest, outcome.Destination)
			if tt.wantKind == entity.ActionFailed {
				assert.Contains(t, outcome.Reason, "activation failed")
			}

			loc, err := surface.Location(context.Background())
			require.NoError(t, err)
			assert.Equal(t, origin, loc)
			assert.Zero(t, surface.OpenTabs())
		})
	}
}

func TestCaptureNoNavigationClicksTwice(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, testutil.FakeSlide{Src: "https://cdn.example.com/banner/a.png"})
	capturer := NewCapturer(surface, testCaptureOptions(), zaptest.NewLogger(t))

	outcome := capturer.Capture(context.Background(), presented(t, surface))
	assert.Equal(t, entity.NoNavigation, outcome.Kind)
	assert.Equal(t, []int{0, 0}, surface.Activations())
	assert.Zero(t, surface.Navigations())
}

func TestCaptureRestoresByNavigationWhenHistoryFails(t *testing.T) {
	fake := testutil.NewFakeSurface(origin, testutil.FakeSlide{
		Src:         "https://cdn.example.com/banner/a.png",
		Behavior:    testutil.BehaviorSameTab,
		Destination: "https://example.com/recruit/9",
	})
	surface := noHistorySurface{fake}
	capturer := NewCapturer(surface, testCaptureOptions(), zaptest.NewLogger(t))

	outcome := capturer.Capture(context.Background(), presented(t, fake))
	assert.Equal(t, entity.SameSurfaceOutcome("https://example.com/recruit/9"), outcome)
	assert.Equal(t, 1, fake.Navigations())

	loc, err := fake.Location(context.Background())
	require.NoError(t, err)
	assert.Equal(t, origin, loc)
}

func TestCaptureStaleHandleFails(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, testutil.FakeSlide{Src: "https://cdn.example.com/banner/a.png"})
	capturer := NewCapturer(surface, testCaptureOptions(), zaptest.NewLogger(t))

	outcome := capturer.Capture(context.Background(), entity.PresentedSlide{Handle: 7})
	assert.Equal(t, entity.ActionFailed, outcome.Kind)
	assert.Empty(t, surface.Activations())
}
