package pointmorph

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw  *glfw.Window
	windowTitle string

	WindowWidth  int
	WindowHeight int

	FramebufferWidth  int
	FramebufferHeight int

	// Accumulated by the glfw scroll callback between polls, drained by the
	// input system once per frame.
	pendingScrollX float64
	pendingScrollY float64
}

// PixelRatio is the framebuffer-to-window scale on high-dpi displays.
func (s *WindowState) PixelRatio() float32 {
	if s.WindowWidth == 0 {
		return 1
	}
	return float32(s.FramebufferWidth) / float32(s.WindowWidth)
}

// WindowModule creates the single glfw window and keeps its size state
// current. Polling events lives here, at the very start of the frame, so
// every later system sees the same input snapshot.
type WindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	width, height, title := m.Width, m.Height, m.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "pointmorph"
	}

	cmd.AddResources(createWindowState(width, height, title))
	app.UseSystem(
		System(windowSystem).
			InStage(Prelude),
	)
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	s := &WindowState{
		windowGlfw:   win,
		windowTitle:  windowTitle,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
	}
	s.FramebufferWidth, s.FramebufferHeight = win.GetFramebufferSize()

	win.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		s.pendingScrollX += xoff
		s.pendingScrollY += yoff
	})

	return s
}

func windowSystem(s *WindowState, cmd *Commands) {
	glfw.PollEvents()

	if s.windowGlfw.ShouldClose() {
		cmd.Quit()
	}

	s.WindowWidth, s.WindowHeight = s.windowGlfw.GetSize()
	s.FramebufferWidth, s.FramebufferHeight = s.windowGlfw.GetFramebufferSize()
}
