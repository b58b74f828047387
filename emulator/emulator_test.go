// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package emulator_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/boot-layout/emulator"
	"github.com/usbarmory/boot-layout/mem"
	"github.com/usbarmory/boot-layout/reset"
	"github.com/usbarmory/boot-layout/util"
)

func rpi3(t *testing.T) *mem.Layout {
	t.Helper()

	b, s := mem.RPi3()
	l, err := mem.Build(b, s)

	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	return l
}

func run(t *testing.T, e *emulator.Emulator) (*emulator.Report, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, err := e.Run(ctx)

	if ctx.Err() == context.DeadlineExceeded {
		t.Fatal("emulation did not terminate")
	}

	return r, err
}

func TestHelloWorld(t *testing.T) {
	var out bytes.Buffer

	l := rpi3(t)
	e := emulator.New(l, util.NewUART(&out))

	img, err := mem.BuildImage(l, mem.Contents{
		Text: make([]byte, 0x100),
		Data: []byte("initial value of a global"),
	})

	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}

	if err := e.Program(img); err != nil {
		t.Fatalf("Program: %v", err)
	}

	r, err := run(t, e)

	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := &emulator.Report{
		States:       []reset.State{reset.Halt, reset.ParkSecondary, reset.ParkSecondary, reset.ParkSecondary},
		Booted:       []uint64{0},
		StackPointer: 0x2000,
	}

	if d := cmp.Diff(want, r); len(d) != 0 {
		t.Fatalf("Got report with diff (-want +got):\n%s", d)
	}

	if got, want := out.String(), "Hello world\n"; got != want {
		t.Fatalf("Got console output %q, want %q", got, want)
	}

	global := make([]byte, 25)

	if err := e.Bus.Read(l.Symbols.Relocate.Start, global); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got, want := string(global), "initial value of a global"; got != want {
		t.Fatalf("Got relocated data %q, want %q", got, want)
	}
}

func TestSingleCore(t *testing.T) {
	var out bytes.Buffer

	e := emulator.New(rpi3(t), util.NewUART(&out))
	e.Cores = 1

	r, err := run(t, e)

	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if d := cmp.Diff([]reset.State{reset.Halt}, r.States); len(d) != 0 {
		t.Fatalf("Got states with diff (-want +got):\n%s", d)
	}
}

func TestKernelError(t *testing.T) {
	var out bytes.Buffer

	errPanic := errors.New("kernel panic")

	e := emulator.New(rpi3(t), util.NewUART(&out))
	e.Kernel = func(ctx context.Context, env *emulator.Env) error {
		return errPanic
	}

	if _, err := run(t, e); !errors.Is(err, errPanic) {
		t.Fatalf("Got error %v, want %v", err, errPanic)
	}

	if out.Len() != 0 {
		t.Fatalf("Got unexpected console output %q", out.String())
	}
}

func TestKernelSeesInitializedMemory(t *testing.T) {
	var out bytes.Buffer

	l := rpi3(t)
	e := emulator.New(l, util.NewUART(&out))

	// a stale value left in RAM by a previous boot
	if err := e.Bus.Write(l.Symbols.Zero.Start+0x10, []byte{0xde, 0xad}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	e.Kernel = func(ctx context.Context, env *emulator.Env) error {
		if err := env.Core.CheckFP(); err != nil {
			return err
		}

		return emulator.CheckGlobals(env.Bus, env.Symbols)
	}

	if _, err := run(t, e); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestCheckGlobals(t *testing.T) {
	l := rpi3(t)
	bus := mem.NewBus(l.Board.Regions(), emulator.RAMFill)

	if err := emulator.CheckGlobals(bus, &l.Symbols); !errors.Is(err, emulator.ErrUninit) {
		t.Fatalf("Got error %v, want %v", err, emulator.ErrUninit)
	}

	if err := mem.Init(bus, &l.Symbols); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := emulator.CheckGlobals(bus, &l.Symbols); err != nil {
		t.Fatalf("CheckGlobals: %v", err)
	}
}

func TestInvalidCores(t *testing.T) {
	e := emulator.New(rpi3(t), util.NewUART(new(bytes.Buffer)))
	e.Cores = 0

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("Got no error, but wanted error")
	}
}
