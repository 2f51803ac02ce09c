// Package testutil provides a deterministic in-memory carousel for tests of
// the resolver components.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

// Behavior is what clicking a fixture slide does.
type Behavior int

const (
	BehaviorNone Behavior = iota
	BehaviorNewTab
	BehaviorNewTabNeverLoads
	BehaviorSameTab
	BehaviorError
)

// Marker is how the fixture flags the presented slide in its markup.
type Marker int

const (
	// MarkerActive sets swiper-slide-active on the presented slide.
	MarkerActive Marker = iota
	// MarkerTop sets top on the presented slide.
	MarkerTop
	// MarkerNone sets no class and reorders nodes so the presented slide is first.
	MarkerNone
)

// FakeSlide is one slide of the fixture carousel.
type FakeSlide struct {
	Title       string
	Src         string
	Href        string
	Behavior    Behavior
	Destination string
}

// FakeSurface implements repository.BrowsingSurface over a cycling list of
// slides. Slide nodes are only present while the surface sits on Origin.
type FakeSurface struct {
	Origin string
	Slides []FakeSlide
	Marker Marker
	// Stuck makes every advance a no-op.
	Stuck bool
	// NoNextControl makes ClickNext report a missing control.
	NoNextControl bool
	Counter       string
	Document      string

	mu          sync.Mutex
	pos         int
	location    string
	history     []string
	advances    int
	keyPresses  int
	activations []int
	opened      int
	closed      int
	navigations int
	onAdvance   func(pos int)
}

var _ repository.BrowsingSurface = (*FakeSurface)(nil)

func NewFakeSurface(origin string, slides ...FakeSlide) *FakeSurface {
	return &FakeSurface{Origin: origin, Slides: slides, location: origin}
}

// SetPosition presents the slide at i.
func (f *FakeSurface) SetPosition(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = i
}

func (f *FakeSurface) Position() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

// Advances counts advance attempts, whether by click or key press.
func (f *FakeSurface) Advances() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.advances
}

func (f *FakeSurface) KeyPresses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keyPresses
}

// Activations returns the slide indexes clicked, in order.
func (f *FakeSurface) Activations() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.activations...)
}

// OpenTabs returns how many opened tabs have not been closed.
func (f *FakeSurface) OpenTabs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened - f.closed
}

func (f *FakeSurface) OpenedTabs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// Navigations counts direct Navigate calls.
func (f *FakeSurface) Navigations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigations
}

// OnAdvance registers a hook called with the new position after each
// successful advance.
func (f *FakeSurface) OnAdvance(fn func(pos int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onAdvance = fn
}

func (f *FakeSurface) Location(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location, nil
}

func (f *FakeSurface) HTML(_ context.Context) (string, error) {
	return f.Document, nil
}

func (f *FakeSurface) SlideNodes(_ context.Context) ([]entity.SlideNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.location != f.Origin || len(f.Slides) == 0 {
		return nil, nil
	}
	n := len(f.Slides)
	nodes := make([]entity.SlideNode, 0, n)
	for j := 0; j < n; j++ {
		i := f.slideAt(j)
		s := f.Slides[i]
		classes := []string{"swiper-slide"}
		presented := i == f.pos
		if presented {
			switch f.Marker {
			case MarkerActive:
				classes = append(classes, "swiper-slide-active")
			case MarkerTop:
				classes = append(classes, "top")
			}
		}
		nodes = append(nodes, entity.SlideNode{
			Index:   j,
			Classes: classes,
			Title:   s.Title,
			Src:     s.Src,
			Href:    s.Href,
			Visible: presented,
		})
	}
	return nodes, nil
}

func (f *FakeSurface) CounterText(_ context.Context) (string, error) {
	return f.Counter, nil
}

func (f *FakeSurface) ClickNext(_ context.Context) (bool, error) {
	if f.NoNextControl {
		return false, nil
	}
	f.advance()
	return true, nil
}

func (f *FakeSurface) PressKey(_ context.Context, key string) error {
	f.mu.Lock()
	f.keyPresses++
	f.mu.Unlock()
	if key == repository.KeyArrowRight {
		f.advance()
	}
	return nil
}

func (f *FakeSurface) Activate(_ context.Context, index int, _ time.Duration) (repository.OpenedSurface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if index < 0 || index >= len(f.Slides) {
		return nil, errors.New("no slide element at index")
	}
	i := f.slideAt(index)
	f.activations = append(f.activations, i)
	s := f.Slides[i]

	switch s.Behavior {
	case BehaviorNewTab, BehaviorNewTabNeverLoads:
		f.opened++
		return &fakeOpened{parent: f, destination: s.Destination, loads: s.Behavior == BehaviorNewTab}, nil
	case BehaviorSameTab:
		if f.location == f.Origin {
			f.history = append(f.history, f.location)
			f.location = s.Destination
		}
		return nil, nil
	case BehaviorError:
		return nil, errors.New("element is not interactable")
	default:
		return nil, nil
	}
}

func (f *FakeSurface) NavigateBack(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.history) == 0 {
		return errors.New("no history entry")
	}
	f.location = f.history[len(f.history)-1]
	f.history = f.history[:len(f.history)-1]
	return nil
}

// Navigate loads url. Loading Origin resets the carousel to its first slide.
func (f *FakeSurface) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigations++
	f.location = url
	f.history = nil
	if url == f.Origin {
		f.pos = 0
	}
	return nil
}

func (f *FakeSurface) advance() {
	f.mu.Lock()
	f.advances++
	if f.Stuck || f.location != f.Origin || len(f.Slides) == 0 {
		f.mu.Unlock()
		return
	}
	f.pos = (f.pos + 1) % len(f.Slides)
	hook, pos := f.onAdvance, f.pos
	f.mu.Unlock()
	if hook != nil {
		hook(pos)
	}
}

// slideAt maps a DOM index to a slide index. Caller holds mu.
func (f *FakeSurface) slideAt(domIndex int) int {
	if f.Marker == MarkerNone {
		return (f.pos + domIndex) % len(f.Slides)
	}
	return domIndex
}

type fakeOpened struct {
	parent      *FakeSurface
	destination string
	loads       bool
	once        sync.Once
}

func (o *fakeOpened) WaitLoaded(ctx context.Context) error {
	if o.loads {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (o *fakeOpened) Location(_ context.Context) (string, error) {
	if !o.loads {
		return "about:blank", nil
	}
	return o.destination, nil
}

func (o *fakeOpened) Close(_ context.Context) error {
	o.once.Do(func() {
		o.parent.mu.Lock()
		o.parent.closed++
		o.parent.mu.Unlock()
	})
	return nil
}

// FakeOpener implements repository.SurfaceOpener by handing out Surface.
type FakeOpener struct {
	Surface *FakeSurface
	Err     error

	mu       sync.Mutex
	released int
	opened   []string
}

var _ repository.SurfaceOpener = (*FakeOpener)(nil)

func (o *FakeOpener) Open(_ context.Context, url string) (repository.BrowsingSurface, func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, url)
	if o.Err != nil {
		return nil, nil, o.Err
	}
	return o.Surface, func() {
		o.mu.Lock()
		o.released++
		o.mu.Unlock()
	}, nil
}

// Released counts calls of the release func.
func (o *FakeOpener) Released() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.released
}

// Opened returns the addresses passed to Open.
func (o *FakeOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}
