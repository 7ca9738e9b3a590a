package gui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeberg.org/snonux/babelcast/internal"
	"codeberg.org/snonux/babelcast/internal/languages"
	"codeberg.org/snonux/babelcast/internal/logging"
	"codeberg.org/snonux/babelcast/internal/session"
	"codeberg.org/snonux/babelcast/internal/status"
)

// Session is the orchestrator the window drives.
type Session interface {
	Run(ctx context.Context, req session.Request) (*session.Result, error)
	Warm(ctx context.Context, source, target string) error
}

// SessionFactory builds the session once the window can receive its
// progress signals and log lines.
type SessionFactory func(rep status.Reporter, log *zap.Logger) Session

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// Sidebar
	modeRadio    *widget.RadioGroup
	sourceSelect *widget.Select
	targetSelect *widget.Select
	modelLabel   *widget.Label

	// Main panel
	originalEntry    *CustomMultiLineEntry
	translationEntry *widget.Entry
	fileLabel        *widget.Label
	uploadButton     *ttwidget.Button
	speakButton      *ttwidget.Button
	repeatButton     *ttwidget.Button
	statusLabel      *widget.Label
	logViewer        *LogViewer

	// State management
	mode        session.Mode
	upload      *session.Upload
	translation string
	pairOK      bool
	busy        bool

	session Session
	log     *zap.Logger
	config  *Config

	// Background processing
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// Config holds GUI application configuration
type Config struct {
	Source string
	Target string
	Log    *zap.Logger
}

// DefaultConfig returns default GUI configuration
func DefaultConfig() *Config {
	return &Config{
		Source: "English",
		Target: "Spanish",
	}
}

// New creates a new GUI application
func New(config *Config, newSession SessionFactory) *Application {
	if config == nil {
		config = DefaultConfig()
	} else {
		// Fill in missing fields with defaults
		defaults := DefaultConfig()
		if config.Source == "" {
			config.Source = defaults.Source
		}
		if config.Target == "" {
			config.Target = defaults.Target
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		app:    app.NewWithID("org.codeberg.snonux.babelcast"),
		mode:   session.ModeText,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
	a.app.SetIcon(theme.MediaRecordIcon())

	a.logViewer = NewLogViewer()
	a.log = logging.OrNop(config.Log).WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, a.logViewer.Core(zapcore.InfoLevel))
	}))
	a.session = newSession(status.Func(a.onSignal), a.log)

	a.setupUI()

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("babelcast v%s - Interactive Translator", internal.Version))
	a.window.Resize(fyne.NewSize(900, 640))

	// Sidebar: input mode and language selection
	labels := make([]string, 0, len(session.Modes()))
	for _, m := range session.Modes() {
		labels = append(labels, m.Label())
	}
	a.modeRadio = widget.NewRadioGroup(labels, a.onModeChanged)
	a.modeRadio.Required = true

	a.sourceSelect = widget.NewSelect(languages.Sources(), func(string) { a.onPairChanged() })
	a.targetSelect = widget.NewSelect(languages.Targets(), func(string) { a.onPairChanged() })

	a.modelLabel = widget.NewLabel("")
	a.modelLabel.Wrapping = fyne.TextWrapWord
	a.modelLabel.TextStyle = fyne.TextStyle{Italic: true}

	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("Input mode", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.modeRadio,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Source language", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.sourceSelect,
		widget.NewLabelWithStyle("Target language", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.targetSelect,
		a.modelLabel,
	)

	// Main panel: original and translated text
	a.originalEntry = NewCustomMultiLineEntry()
	a.originalEntry.Wrapping = fyne.TextWrapWord
	a.originalEntry.SetOnSubmit(a.onSpeak)
	a.originalEntry.SetOnEscape(func() { a.window.Canvas().Unfocus() })

	a.translationEntry = widget.NewMultiLineEntry()
	a.translationEntry.Wrapping = fyne.TextWrapWord
	a.translationEntry.SetPlaceHolder("Translation will appear here...")
	a.translationEntry.Disable()

	a.fileLabel = widget.NewLabel("No file selected")
	a.uploadButton = ttwidget.NewButtonWithIcon("Upload .txt", theme.FolderOpenIcon(), a.onUpload)
	uploadRow := container.NewBorder(nil, nil, a.uploadButton, nil, a.fileLabel)

	a.speakButton = ttwidget.NewButtonWithIcon("Speak", theme.MediaPlayIcon(), a.onSpeak)
	a.speakButton.Importance = widget.HighImportance
	a.repeatButton = ttwidget.NewButtonWithIcon("Repeat Translation", theme.MediaReplayIcon(), a.onRepeat)

	textPanels := container.NewGridWithRows(2,
		container.NewBorder(widget.NewLabel("Original text:"), nil, nil, nil, a.originalEntry),
		container.NewBorder(widget.NewLabel("Translated text:"), nil, nil, nil, a.translationEntry),
	)

	mainPanel := container.NewBorder(
		uploadRow,
		container.NewHBox(a.speakButton, a.repeatButton),
		nil, nil,
		textPanels,
	)

	// Status and log section
	a.statusLabel = widget.NewLabel("Ready")
	statusSection := container.NewVBox(
		widget.NewSeparator(),
		a.statusLabel,
		a.logViewer,
	)

	split := container.NewHSplit(container.NewPadded(sidebar), container.NewPadded(mainPanel))
	split.SetOffset(0.25)

	content := container.NewBorder(nil, statusSection, nil, nil, split)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))
	a.setupTooltips()
	a.setupKeyboardShortcuts()

	a.window.SetOnClosed(func() {
		a.cancel()
		a.wg.Wait()
	})

	// Initial selection triggers the pair and mode handlers
	a.modeRadio.SetSelected(session.ModeText.Label())
	a.sourceSelect.SetSelected(a.config.Source)
	a.targetSelect.SetSelected(a.config.Target)
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

// setupTooltips sets up all tooltips after the tooltip layer has been created
func (a *Application) setupTooltips() {
	a.speakButton.SetToolTip("Translate and speak (Ctrl+Enter)")
	a.repeatButton.SetToolTip("Speak the last translation again (Ctrl+R)")
	a.uploadButton.SetToolTip("Choose a UTF-8 .txt file to translate")
}

func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyReturn, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		a.onSpeak()
	})
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		a.onRepeat()
	})
}

func (a *Application) onModeChanged(label string) {
	mode, ok := modeForLabel(label)
	if !ok {
		return
	}

	a.mu.Lock()
	a.mode = mode
	a.upload = nil
	a.translation = ""
	a.mu.Unlock()

	a.originalEntry.SetText("")
	a.translationEntry.SetText("")
	a.fileLabel.SetText("No file selected")

	switch mode {
	case session.ModeText:
		a.originalEntry.Enable()
		a.originalEntry.SetPlaceHolder("Type the text to translate...")
		a.speakButton.SetText("Translate & Speak")
	case session.ModeAudio:
		a.originalEntry.Disable()
		a.originalEntry.SetPlaceHolder("Recognized speech will appear here...")
		a.speakButton.SetText("Speak Now")
	case session.ModeFile:
		a.originalEntry.Disable()
		a.originalEntry.SetPlaceHolder("File contents will appear here...")
		a.speakButton.SetText("Translate File")
	}

	a.refreshControls()
}

func (a *Application) onPairChanged() {
	source, target := a.sourceSelect.Selected, a.targetSelect.Selected
	if source == "" || target == "" {
		return
	}

	pair, err := languages.Resolve(source, target)

	a.mu.Lock()
	a.pairOK = err == nil
	a.translation = ""
	a.mu.Unlock()

	a.translationEntry.SetText("")
	a.refreshControls()

	if err != nil {
		a.modelLabel.SetText("")
		a.updateStatus(err.Error())
		return
	}
	a.modelLabel.SetText(pair.ModelID)
	a.updateStatus(fmt.Sprintf("Loading %s...", pair.ModelID))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		err := a.session.Warm(a.ctx, source, target)
		fyne.Do(func() {
			// the user may have moved on to another pair meanwhile
			if a.sourceSelect.Selected != source || a.targetSelect.Selected != target {
				return
			}
			if err != nil {
				a.updateStatus("Model loading failed: " + err.Error())
				return
			}
			a.updateStatus("Ready")
		})
	}()
}

func (a *Application) onUpload() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if rc == nil {
			return
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			a.showError(fmt.Errorf("failed to read %s: %w", rc.URI().Name(), err))
			return
		}

		a.mu.Lock()
		a.upload = &session.Upload{Name: rc.URI().Name(), Data: data}
		a.translation = ""
		a.mu.Unlock()

		a.fileLabel.SetText(rc.URI().Name())
		a.start(session.ActionSpeak)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".txt"}))
	d.Show()
}

func (a *Application) onSpeak() {
	a.start(session.ActionSpeak)
}

func (a *Application) onRepeat() {
	a.start(session.ActionRepeat)
}

// start launches one session run off the UI goroutine.
func (a *Application) start(action session.Action) {
	a.mu.Lock()
	if a.busy || !a.pairOK {
		a.mu.Unlock()
		return
	}
	form := formState{
		Mode:        a.mode,
		Source:      a.sourceSelect.Selected,
		Target:      a.targetSelect.Selected,
		Text:        a.originalEntry.Text,
		Upload:      a.upload,
		Translation: a.translation,
	}
	if !form.canRun(action) {
		a.mu.Unlock()
		return
	}
	a.busy = true
	a.mu.Unlock()

	a.refreshControls()
	req := form.request(action)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		res, err := a.session.Run(a.ctx, req)
		fyne.Do(func() {
			a.finish(req, res, err)
		})
	}()
}

// finish renders a completed run. It runs on the UI goroutine.
func (a *Application) finish(req session.Request, res *session.Result, err error) {
	a.mu.Lock()
	a.busy = false
	if res != nil && res.Translation != "" {
		a.translation = res.Translation
	}
	a.mu.Unlock()

	view := present(req, res, err)
	if view.ShowOriginal {
		a.originalEntry.SetText(view.Original)
	}
	if view.ShowTranslation {
		a.translationEntry.SetText(view.Translation)
	}
	a.updateStatus(view.Status)
	if view.Err != nil {
		a.log.Warn("run failed", zap.String("mode", string(req.Mode)), zap.Error(view.Err))
		a.showError(view.Err)
	}

	a.refreshControls()
}

// onSignal receives progress signals from the running session.
func (a *Application) onSignal(s status.Signal, active bool) {
	fyne.Do(func() {
		if active {
			a.updateStatus(s.Message())
		}
	})
}

// refreshControls enables the actions that make sense right now.
func (a *Application) refreshControls() {
	a.mu.Lock()
	busy := a.busy
	ready := a.pairOK && !busy
	mode := a.mode
	hasTranslation := a.translation != ""
	a.mu.Unlock()

	setEnabled(a.speakButton, ready)
	setEnabled(a.repeatButton, ready && hasTranslation && mode != session.ModeAudio)
	setEnabled(a.uploadButton, ready && mode == session.ModeFile)
	setEnabled(a.modeRadio, !busy)
	setEnabled(a.sourceSelect, !busy)
	setEnabled(a.targetSelect, !busy)

	if mode == session.ModeFile {
		a.uploadButton.Show()
		a.fileLabel.Show()
	} else {
		a.uploadButton.Hide()
		a.fileLabel.Hide()
	}
}

type disableable interface {
	Enable()
	Disable()
}

func setEnabled(w disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}

func (a *Application) updateStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) showError(err error) {
	dialog.ShowError(err, a.window)
}
