package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectral-go/ripple/gpu"
)

// fakeDispatch records each dispatch and consumes its wait token, the way
// the real stage does when it submits.
type fakeDispatch struct {
	calls []dispatchCall
	fail  error
}

type dispatchCall struct {
	input   *gpu.StorageImage
	output  *gpu.StorageImage
	groups  [3]uint32
	params  []byte
	waitSeq uint64
}

func (f *fakeDispatch) Dispatch(images []*gpu.StorageImage, groups [3]uint32, params []byte, dependsOn *gpu.Token) (*gpu.Token, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	done, err := gpu.Join(dependsOn, gpu.Now())
	if err != nil {
		return nil, err
	}

	f.calls = append(f.calls, dispatchCall{
		input:   images[0],
		output:  images[1],
		groups:  groups,
		params:  params,
		waitSeq: dependsOn.Seq(),
	})
	return done, nil
}

// fakeDraw records each draw. When fail is set it returns the error without
// consuming the wait token, mirroring a failed swapchain acquire.
type fakeDraw struct {
	calls []drawCall
	fail  error

	// consumeOnFail consumes the token before failing, mirroring an
	// outdated surface reported by present after the submit.
	consumeOnFail bool
}

type drawCall struct {
	image   *gpu.StorageImage
	params  []byte
	waitSeq uint64
}

func (f *fakeDraw) Draw(images []*gpu.StorageImage, params []byte, dependsOn *gpu.Token) (*gpu.Token, error) {
	if f.fail != nil {
		if f.consumeOnFail {
			if _, err := gpu.Join(dependsOn, gpu.Now()); err != nil {
				return nil, err
			}
		}
		return nil, f.fail
	}

	done, err := gpu.Join(dependsOn, gpu.Now())
	if err != nil {
		return nil, err
	}

	f.calls = append(f.calls, drawCall{
		image:   images[0],
		params:  params,
		waitSeq: dependsOn.Seq(),
	})
	return done, nil
}

func newTestScheduler(compute *fakeDispatch, render *fakeDraw) (*Scheduler, *gpu.ImagePair) {
	a := &gpu.StorageImage{}
	b := &gpu.StorageImage{}
	pair := gpu.NewImagePair(a, b)

	return NewScheduler(compute, render, pair, nil, [3]uint32{16, 16, 1}), pair
}

func TestRunFrameChaining(t *testing.T) {
	compute := &fakeDispatch{}
	render := &fakeDraw{}
	sched, pair := newTestScheduler(compute, render)

	require.NoError(t, sched.RunFrame([]byte{1}, []byte{2}))

	require.Len(t, compute.calls, 1)
	require.Len(t, render.calls, 1)

	// the draw waits on the token produced by the compute dispatch
	assert.Greater(t, render.calls[0].waitSeq, compute.calls[0].waitSeq)

	// the draw presents the image that compute wrote
	assert.Same(t, compute.calls[0].output, render.calls[0].image)

	assert.Equal(t, [3]uint32{16, 16, 1}, compute.calls[0].groups)
	assert.Equal(t, []byte{1}, compute.calls[0].params)
	assert.Equal(t, []byte{2}, render.calls[0].params)

	// roles swapped: last frame's output is the next input
	assert.Same(t, render.calls[0].image, pair.Input())
}

func TestThreeFramePingPong(t *testing.T) {
	compute := &fakeDispatch{}
	render := &fakeDraw{}
	sched, _ := newTestScheduler(compute, render)

	state := sched.State()
	assert.True(t, state.Init)

	var inits []bool
	for i := 0; i < 3; i++ {
		inits = append(inits, state.Init)
		require.NoError(t, sched.RunFrame(nil, nil))
	}

	assert.Equal(t, []bool{true, false, false}, inits)
	assert.Equal(t, uint64(3), state.Frame)

	// with two images the roles alternate, so frame 3 reads what
	// frame 1 wrote
	require.Len(t, compute.calls, 3)
	assert.Same(t, compute.calls[0].output, compute.calls[2].input)

	// each frame's compute waits on the previous frame's render
	for i := 1; i < 3; i++ {
		assert.Greater(t, compute.calls[i].waitSeq, render.calls[i-1].waitSeq)
	}
}

func TestRecoverableDrawKeepsState(t *testing.T) {
	compute := &fakeDispatch{}
	render := &fakeDraw{fail: gpu.ErrSurfaceOutdated}
	sched, pair := newTestScheduler(compute, render)

	before := pair.Output()

	err := sched.RunFrame(nil, nil)
	require.ErrorIs(t, err, gpu.ErrSurfaceOutdated)

	// roles unswapped, frame not counted, init still pending
	assert.Same(t, before, pair.Output())
	assert.Equal(t, uint64(0), sched.State().Frame)
	assert.True(t, sched.State().Init)

	// the retry waits on the unconsumed compute token from the
	// aborted frame
	render.fail = nil
	require.NoError(t, sched.RunFrame(nil, nil))
	require.Len(t, compute.calls, 2)
	assert.Greater(t, compute.calls[1].waitSeq, compute.calls[0].waitSeq)
}

func TestRecoverablePresentRestartsChain(t *testing.T) {
	compute := &fakeDispatch{}
	render := &fakeDraw{fail: gpu.ErrSurfaceOutdated, consumeOnFail: true}
	sched, _ := newTestScheduler(compute, render)

	err := sched.RunFrame(nil, nil)
	require.ErrorIs(t, err, gpu.ErrSurfaceOutdated)

	// the wait token was consumed by the submit, so the chain restarts
	// from a completed token and the retry still runs
	render.fail = nil
	require.NoError(t, sched.RunFrame(nil, nil))
}
