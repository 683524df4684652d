// Package script automates the emulator with Lua scripts.
//
// A script can define a global on_frame(frame) function that is called after
// every emulated frame. The following functions are available:
//
//	press(key), release(key)  change the state of a keypad key 0-15
//	reg(n)                    returns register Vn
//	pc(), i(), dt(), st()     return the program counter, index and timers
//	peek(address)             returns a memory byte
//	pixel(x, y)               returns whether a display pixel is lit
//	frame()                   returns the number of emulated frames
//	turbo(enabled)            enables or disables turbo mode
//	log(message)              logs an info message
//	quit()                    stops the emulation after the current frame
package script

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

const frameHandler = "on_frame"

// Script is a loaded Lua script bound to a runner.
type Script struct {
	logger *log.Logger
	runner *host.Runner
	state  *lua.LState
	quit   bool
}

// New returns a new Lua environment with the emulator functions registered.
func New(logger *log.Logger, runner *host.Runner) *Script {
	s := &Script{
		logger: logger,
		runner: runner,
		state:  lua.NewState(),
	}

	functions := map[string]lua.LGFunction{
		"press":   s.press,
		"release": s.release,
		"reg":     s.register,
		"pc":      s.pc,
		"i":       s.index,
		"dt":      s.delayTimer,
		"st":      s.soundTimer,
		"peek":    s.peek,
		"pixel":   s.pixel,
		"frame":   s.frame,
		"turbo":   s.turbo,
		"log":     s.logMessage,
		"quit":    s.requestQuit,
	}
	for name, fn := range functions {
		s.state.SetGlobal(name, s.state.NewFunction(fn))
	}
	return s
}

// LoadFile runs the script file, which usually defines on_frame.
func (s *Script) LoadFile(path string) error {
	if err := s.state.DoFile(path); err != nil {
		return fmt.Errorf("running script '%s': %w", path, err)
	}
	return nil
}

// LoadString runs the script source.
func (s *Script) LoadString(source string) error {
	if err := s.state.DoString(source); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}

// FrameHook returns the runner hook that calls on_frame after every frame.
func (s *Script) FrameHook() host.FrameHook {
	return func(frame int) error {
		if s.quit {
			return host.ErrQuit
		}

		fn, ok := s.state.GetGlobal(frameHandler).(*lua.LFunction)
		if ok {
			err := s.state.CallByParam(lua.P{
				Fn:      fn,
				NRet:    0,
				Protect: true,
			}, lua.LNumber(frame))
			if err != nil {
				return fmt.Errorf("calling %s: %w", frameHandler, err)
			}
		}

		if s.quit {
			return host.ErrQuit
		}
		return nil
	}
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.state.Close()
}

func (s *Script) machine() *machine.State {
	return s.runner.Machine()
}

func (s *Script) checkKey(L *lua.LState) int {
	key := L.CheckInt(1)
	if key < 0 || key >= machine.KeyCount {
		L.ArgError(1, "key out of range")
	}
	return key
}

func (s *Script) press(L *lua.LState) int {
	s.machine().Keyboard.SetKey(s.checkKey(L), true)
	return 0
}

func (s *Script) release(L *lua.LState) int {
	s.machine().Keyboard.SetKey(s.checkKey(L), false)
	return 0
}

func (s *Script) register(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 || n >= machine.RegisterCount {
		L.ArgError(1, "register out of range")
	}
	L.Push(lua.LNumber(s.machine().V[n]))
	return 1
}

func (s *Script) pc(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().PC))
	return 1
}

func (s *Script) index(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().I))
	return 1
}

func (s *Script) delayTimer(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().DelayTimer))
	return 1
}

func (s *Script) soundTimer(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().SoundTimer))
	return 1
}

func (s *Script) peek(L *lua.LState) int {
	address := L.CheckInt(1)
	if address < 0 || address > machine.MaxAddress {
		L.ArgError(1, "address out of range")
	}
	L.Push(lua.LNumber(s.machine().Memory[address]))
	return 1
}

func (s *Script) pixel(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	if x < 0 || x >= display.Width || y < 0 || y >= display.Height {
		L.ArgError(1, "coordinates out of range")
	}
	L.Push(lua.LBool(s.machine().Display.Pixel(x, y)))
	return 1
}

func (s *Script) frame(L *lua.LState) int {
	L.Push(lua.LNumber(s.runner.Frame()))
	return 1
}

func (s *Script) turbo(L *lua.LState) int {
	s.runner.SetTurbo(L.CheckBool(1))
	return 0
}

func (s *Script) logMessage(L *lua.LState) int {
	s.logger.Info("Script", log.String("message", L.CheckString(1)))
	return 0
}

func (s *Script) requestQuit(*lua.LState) int {
	s.quit = true
	return 0
}
