package proc

import (
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// NoProcess is the pid sentinel for a handle that owns no process.
const NoProcess = -1

// DefaultStopSignal is the signal Close uses when terminating a still-owned
// child as part of cleanup.
const DefaultStopSignal = unix.SIGTERM

// Handle owns one spawned process and the parent ends of its stdio pipes.
//
// Mutating calls (Close, Detach, Wait, Kill) are not synchronized and must
// be serialized by the caller. The three streams are distinct descriptors
// and may each be used concurrently with the others.
type Handle struct {
	pid int

	// Stdin is the write end of the child's input pipe, Stdout and Stderr
	// the read ends of its output pipes. They are nil once the handle has
	// been closed; closing is one-way.
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Spawn starts command with the given arguments and environment and returns
// a handle whose Stdin, Stdout and Stderr are piped to the child's standard
// streams.
//
// command is resolved via the search path when it contains no path
// separator, like the shell would. args does not include the program name;
// command is always argument zero. env == nil inherits the parent
// environment, while a non-nil slice of "key=value" entries becomes the
// child's entire environment.
//
// On failure every descriptor created by the call has been closed again; a
// handle is returned only for a successfully spawned child.
func Spawn(command string, args, env []string) (*Handle, error) {
	return SpawnIn("", command, args, env)
}

// SpawnIn is Spawn with the child's working directory set to dir. An empty
// dir inherits the parent's working directory.
func SpawnIn(dir, command string, args, env []string) (*Handle, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, &SystemError{Op: "lookpath", Err: err}
	}

	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, &SystemError{Op: "pipe", Err: err}
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		closeFiles(inR, inW)
		return nil, &SystemError{Op: "pipe", Err: err}
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeFiles(inR, inW, outR, outW)
		return nil, &SystemError{Op: "pipe", Err: err}
	}

	// The pipe descriptors are O_CLOEXEC, so only the three ends listed in
	// Files reach the child, dup'ed onto slots 0..2.
	attr := &os.ProcAttr{
		Dir:   dir,
		Env:   env,
		Files: []*os.File{inR, outW, errW},
	}
	argv := append([]string{command}, args...)
	p, err := os.StartProcess(path, argv, attr)

	// The parent never uses the child-side ends, on either outcome.
	closeFiles(inR, outW, errW)
	if err != nil {
		closeFiles(inW, outR, errR)
		return nil, &SystemError{Op: "spawn", Err: err}
	}

	h := &Handle{pid: p.Pid, Stdin: inW, Stdout: outR, Stderr: errR}
	// The pid is reaped through Wait4; drop the os.Process so its state
	// does not shadow ours.
	_ = p.Release()
	return h, nil
}

// PID returns the pid of the owned process, or NoProcess.
func (h *Handle) PID() int {
	return h.pid
}

// IsOpen reports whether the handle currently owns a process. It does not
// probe the OS: a spawned handle stays open until Close, Wait or Kill.
func (h *Handle) IsOpen() bool {
	return h.pid != NoProcess
}

// Close releases everything the handle still owns: the three streams and,
// if a process is still attached, a best-effort termination and reap. All
// errors are discarded, so Close can be deferred unconditionally; calling
// it again is a no-op.
func (h *Handle) Close() {
	h.closeStreams()
	if h.pid == NoProcess {
		return
	}
	// A zombie still accepts signals, so a successful kill means there is
	// a process table entry left to reap.
	if err := unix.Kill(h.pid, DefaultStopSignal); err == nil {
		var ws unix.WaitStatus
		for {
			if _, err := unix.Wait4(h.pid, &ws, 0, nil); err != unix.EINTR {
				break
			}
		}
	}
	h.pid = NoProcess
}

// Detach gives up ownership of the process without touching it: the child
// is no longer signaled or reaped through this handle and may outlive it.
// The streams stay attached until closed separately. Detach returns the
// relinquished pid so the caller can record it (e.g. in a pidfile).
func (h *Handle) Detach() int {
	pid := h.pid
	h.pid = NoProcess
	return pid
}

// Wait reaps the child. With block set it waits until the process changes
// state; otherwise it polls once and returns ErrRunning if the child is
// still alive, leaving the handle open. Every other outcome, success or
// reap failure, leaves the handle fully closed: streams released and pid
// cleared. A reap failure (including ECHILD when another waiter won a race
// for the same pid) is surfaced as a *SystemError.
func (h *Handle) Wait(block bool) (Status, error) {
	if h.pid == NoProcess {
		return Status{}, &SystemError{Op: "wait", Err: unix.ECHILD}
	}
	flags := 0
	if !block {
		flags = unix.WNOHANG
	}
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(h.pid, &ws, flags, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			h.pid = NoProcess
			h.closeStreams()
			return Status{}, &SystemError{Op: "wait4", Err: err}
		}
		if wpid == 0 {
			return Status{}, ErrRunning
		}
		break
	}
	h.pid = NoProcess
	h.closeStreams()
	return Status{ws: ws}, nil
}

// Kill sends sig to the child and, once delivery succeeds, reaps it with a
// blocking Wait. The returned status reflects how the child actually died,
// which need not be sig if it exited first.
func (h *Handle) Kill(sig unix.Signal) (Status, error) {
	if h.pid == NoProcess {
		return Status{}, &SystemError{Op: "kill", Err: unix.ESRCH}
	}
	if err := unix.Kill(h.pid, sig); err != nil {
		return Status{}, &SystemError{Op: "kill", Err: err}
	}
	return h.Wait(true)
}

func (h *Handle) closeStreams() {
	for _, f := range []*os.File{h.Stdin, h.Stdout, h.Stderr} {
		if f != nil {
			f.Close()
		}
	}
	h.Stdin, h.Stdout, h.Stderr = nil, nil, nil
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		f.Close()
	}
}
