// Package app wires the views, commands, and shared state into the root
// Bubble Tea model.
package app

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/chat"
	"github.com/quillchat/quill/internal/router"
	"github.com/quillchat/quill/internal/tui"
	"github.com/quillchat/quill/internal/tui/commands"
	"github.com/quillchat/quill/internal/tui/views"
)

// App is the root model. It owns one view model per screen and dispatches
// messages to whichever one the guard says is current.
type App struct {
	model *tui.Model

	loginView      views.LoginModel
	registerView   views.RegisterModel
	onboardingView views.OnboardingModel
	chatView       views.ChatModel
	dashboardView  views.DashboardModel
}

// New creates the root model around the shared application state.
func New(model *tui.Model) *App {
	return &App{
		model:          model,
		loginView:      views.NewLoginModel(model.Width, model.Height),
		registerView:   views.NewRegisterModel(model.Width, model.Height),
		onboardingView: views.NewOnboardingModel(model.Width, model.Height),
		chatView:       views.NewChatModel(model.Width, model.Height),
		dashboardView:  views.NewDashboardModel(model.Width, model.Height),
	}
}

// Init resolves the public entry view. The session was restored (or not)
// before the program started, so the guard redirects a live session to chat
// or onboarding and leaves everyone else on the sign-in screen.
func (a *App) Init() tea.Cmd {
	effective := a.model.Navigate(router.ViewLogin)
	if effective == router.ViewChat {
		return commands.LoadSummariesCmd(a.model.Engine)
	}
	return nil
}

// Update is the single message loop for the whole application.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		return a.broadcast(msg)

	case tea.KeyMsg:
		keys := tui.DefaultKeyMap
		switch {
		case key.Matches(msg, keys.CtrlC):
			return a, tea.Quit
		case key.Matches(msg, keys.Logout):
			if a.model.Auth.IsAuthenticated() {
				return a, commands.LogoutCmd(a.model.Auth)
			}
		case key.Matches(msg, keys.Dashboard):
			if a.model.View == router.ViewChat {
				a.model.Navigate(router.ViewDashboard)
				return a, tea.Batch(
					a.dashboardView.StartLoading(),
					commands.LoadStatsCmd(a.model.Analytics),
					commands.LoadUsageCmd(a.model.Analytics, 7),
					commands.LoadTopicsCmd(a.model.Analytics, 5),
					commands.LoadInsightsCmd(a.model.Analytics),
				)
			}
		}

	// ------------------------------------------------------------------
	// Navigation
	// ------------------------------------------------------------------

	case tui.NavigateMsg:
		a.model.Navigate(msg.View)
		return a, nil

	case views.SwitchToRegisterMsg:
		a.model.Navigate(router.ViewRegister)
		return a, nil

	case views.SwitchToLoginMsg:
		a.model.Navigate(router.ViewLogin)
		return a, nil

	case views.CloseDashboardMsg:
		a.model.Navigate(router.ViewChat)
		return a, nil

	// ------------------------------------------------------------------
	// Auth flow
	// ------------------------------------------------------------------

	case views.SubmitLoginMsg:
		return a, commands.LoginCmd(a.model.Auth, msg.Email, msg.Password)

	case tui.LoginResultMsg:
		if msg.Err != nil {
			a.loginView.SetStatus(loginFailureText(msg.Err))
			return a, nil
		}
		return a.enterChat()

	case views.SubmitRegisterMsg:
		return a, commands.RegisterCmd(a.model.Auth, msg.Email, msg.Password, msg.Name)

	case tui.RegisterResultMsg:
		if msg.Err != nil {
			a.registerView.SetStatus(failureText(msg.Err))
			return a, nil
		}
		// Fresh accounts have no preferences, so the guard lands on
		// onboarding here.
		return a.enterChat()

	case views.SubmitOnboardingMsg:
		return a, commands.CompleteOnboardingCmd(a.model.Auth, msg.Preferences)

	case tui.OnboardingResultMsg:
		if msg.Err != nil {
			if a.sessionLost(msg.Err) {
				return a, nil
			}
			a.onboardingView.SetStatus(failureText(msg.Err))
			return a, nil
		}
		a.model.Status = ""
		if a.model.Navigate(router.ViewChat) == router.ViewChat {
			return a, commands.LoadSummariesCmd(a.model.Engine)
		}
		return a, nil

	case tui.LoggedOutMsg:
		a.resetViews()
		a.model.Status = ""
		a.model.Navigate(router.ViewLogin)
		return a, nil

	// ------------------------------------------------------------------
	// Chat flow
	// ------------------------------------------------------------------

	case views.SendChatMsg:
		return a, commands.SendMessageCmd(a.model.Engine, msg.Content)

	case tui.SendResultMsg:
		a.chatView.SendFinished()
		if msg.Err != nil {
			if a.sessionLost(msg.Err) {
				return a, nil
			}
			if errors.Is(msg.Err, chat.ErrBusy) {
				a.chatView.SetStatus("Still waiting for the previous reply")
				return a, nil
			}
			// The optimistic message stays visible next to the notice.
			a.chatView.SetStatus(failureText(msg.Err))
			return a, nil
		}
		a.chatView.SetActive(a.model.Engine.Active())
		a.chatView.SetSummaries(a.model.Engine.Summaries())
		return a, nil

	case views.OpenConversationMsg:
		return a, commands.LoadConversationCmd(a.model.Engine, msg.ID)

	case tui.ConversationLoadedMsg:
		if msg.Err != nil {
			if a.sessionLost(msg.Err) {
				return a, nil
			}
			a.chatView.SetStatus(failureText(msg.Err))
			return a, nil
		}
		a.chatView.SetActive(msg.Conversation)
		return a, nil

	case views.NewChatMsg:
		a.model.Engine.StartNewChat()
		a.chatView.SetActive(nil)
		return a, nil

	case views.DeleteChatMsg:
		return a, commands.DeleteConversationCmd(a.model.Engine, msg.ID)

	case tui.ConversationDeletedMsg:
		if msg.Err != nil {
			if a.sessionLost(msg.Err) {
				return a, nil
			}
			a.chatView.SetStatus(failureText(msg.Err))
			return a, nil
		}
		a.chatView.SetActive(a.model.Engine.Active())
		a.chatView.SetSummaries(a.model.Engine.Summaries())
		return a, nil

	case tui.SummariesLoadedMsg:
		if msg.Err != nil {
			if a.sessionLost(msg.Err) {
				return a, nil
			}
			a.chatView.SetStatus(failureText(msg.Err))
			return a, nil
		}
		a.chatView.SetSummaries(msg.Summaries)
		return a, nil

	// ------------------------------------------------------------------
	// Dashboard flow
	// ------------------------------------------------------------------

	case tui.StatsLoadedMsg:
		if msg.Err != nil {
			if a.sessionLost(msg.Err) {
				return a, nil
			}
			a.dashboardView.SetStatus(failureText(msg.Err))
			return a, nil
		}
		a.dashboardView.SetStats(msg.Stats)
		return a, nil

	case tui.UsageLoadedMsg:
		// The usage chart is an extra; stats alone still render.
		if msg.Err == nil {
			a.dashboardView.SetUsage(msg.Usage)
		}
		return a, nil

	case tui.TopicsLoadedMsg:
		if msg.Err == nil {
			a.dashboardView.SetTopics(msg.Topics)
		}
		return a, nil

	case tui.InsightsLoadedMsg:
		if msg.Err == nil {
			a.dashboardView.SetInsights(msg.Insights)
		}
		return a, nil
	}

	return a.routeToView(msg)
}

// enterChat runs the post-auth navigation. The screen we are leaving is a
// public one, so re-resolving it lets the guard decide between chat and
// onboarding per the preference-completeness rule.
func (a *App) enterChat() (tea.Model, tea.Cmd) {
	a.model.Status = ""
	effective := a.model.Navigate(router.ViewLogin)
	if effective == router.ViewChat {
		return a, commands.LoadSummariesCmd(a.model.Engine)
	}
	return a, nil
}

// sessionLost redirects to the login screen when the gateway reported an
// authentication failure. The manager has already torn the session down by
// the time the error reaches us.
func (a *App) sessionLost(err error) bool {
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	a.resetViews()
	a.model.Navigate(router.ViewLogin)
	a.loginView.SetStatus("Session expired. Please sign in again.")
	return true
}

// resetViews discards per-screen state so nothing from the previous session
// leaks into the next one.
func (a *App) resetViews() {
	a.loginView = views.NewLoginModel(a.model.Width, a.model.Height)
	a.registerView = views.NewRegisterModel(a.model.Width, a.model.Height)
	a.onboardingView = views.NewOnboardingModel(a.model.Width, a.model.Height)
	a.chatView = views.NewChatModel(a.model.Width, a.model.Height)
	a.dashboardView = views.NewDashboardModel(a.model.Width, a.model.Height)
}

// broadcast forwards a message to every view, not just the current one, so
// background views stay sized correctly.
func (a *App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.loginView, cmd = a.loginView.Update(msg)
	cmds = append(cmds, cmd)
	a.registerView, cmd = a.registerView.Update(msg)
	cmds = append(cmds, cmd)
	a.onboardingView, cmd = a.onboardingView.Update(msg)
	cmds = append(cmds, cmd)
	a.chatView, cmd = a.chatView.Update(msg)
	cmds = append(cmds, cmd)
	a.dashboardView, cmd = a.dashboardView.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// routeToView sends a message to the view the guard says is current.
func (a *App) routeToView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.model.View {
	case router.ViewLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case router.ViewRegister:
		a.registerView, cmd = a.registerView.Update(msg)
	case router.ViewOnboarding:
		a.onboardingView, cmd = a.onboardingView.Update(msg)
	case router.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case router.ViewDashboard:
		a.dashboardView, cmd = a.dashboardView.Update(msg)
	}
	return a, cmd
}

// View renders the current screen.
func (a *App) View() string {
	switch a.model.View {
	case router.ViewLogin:
		return a.loginView.View()
	case router.ViewRegister:
		return a.registerView.View()
	case router.ViewOnboarding:
		return a.onboardingView.View()
	case router.ViewChat:
		return a.chatView.View()
	case router.ViewDashboard:
		return a.dashboardView.View()
	}
	return ""
}

// loginFailureText maps a login error to what the form shows. A 401 here
// means bad credentials rather than an expired session.
func loginFailureText(err error) string {
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		return "Invalid email or password"
	}
	return failureText(err)
}

// failureText maps an error to a one-line notice for the status area.
func failureText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return "Cannot reach the server. Check your connection and try again."
	}
	return err.Error()
}
