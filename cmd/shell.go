package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inkbound/internal/api"
	"inkbound/internal/models"
	"inkbound/internal/services"
	"inkbound/internal/view"
)

// shell is the interactive command loop driving the rendering pipeline
type shell struct {
	session      *services.SessionService
	interactions *services.InteractionService
	feed         *services.FeedService
	detail       *services.DetailController
	search       *services.SearchService
	renderer     view.Renderer
	notifier     *view.Notifier

	in  *bufio.Scanner
	out io.Writer

	// last rendered lists, so open/user commands can index into them
	lastImages []models.Image
	lastUsers  []models.User
	onProfile  bool
}

func (s *shell) run(ctx context.Context) {
	fmt.Fprintln(s.out, `inkbound — type "help" for commands`)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return
		}

		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if cmd == "quit" || cmd == "exit" {
			return
		}
		s.dispatch(ctx, cmd, args, line)
	}
}

func (s *shell) dispatch(ctx context.Context, cmd string, args []string, line string) {
	switch cmd {
	case "help":
		s.help()
	case "login":
		s.login(ctx, args)
	case "register":
		s.register(ctx, args)
	case "logout":
		s.logout()
	case "feed":
		s.showFeed(ctx)
	case "profile":
		s.showProfile(ctx)
	case "search":
		s.doSearch(ctx, rest(line, 1))
	case "mode":
		s.setMode(ctx, args)
	case "user":
		s.openUser(ctx, args)
	case "open":
		s.openDetail(ctx, args)
	case "close":
		s.detail.Close()
	case "like":
		s.toggle(ctx, s.detail.ToggleLike, view.MsgLoginToLike)
	case "save":
		s.toggle(ctx, s.detail.ToggleSave, view.MsgLoginToSave)
	case "follow":
		s.toggleFollow(ctx)
	case "comment":
		s.addComment(ctx, rest(line, 1))
	case "edit":
		s.editComment(ctx, args, line)
	case "rmcomment":
		s.removeComment(ctx, args)
	case "delete":
		s.deleteImage(ctx)
	case "upload":
		s.upload(ctx, args, line)
	default:
		s.notifier.Show(fmt.Sprintf("Unknown command %q", cmd))
	}
}

func (s *shell) help() {
	fmt.Fprint(s.out, `commands:
  login <user> <password>                authenticate
  register <user> <email> <pass> <type>  create an account (type: artist|studio|client)
  logout                                 end the session
  feed                                   show the landing feed
  profile                                show your gallery
  search <term>                          search the active category
  mode accounts|content                  switch search category
  user <n>                               open the n-th account result
  open <n>                               open the n-th image in detail view
  close                                  close the detail view
  like | save | follow                   act on the open image
  comment <text>                         comment on the open image
  edit <comment-id> <text>               edit your comment
  rmcomment <comment-id>                 delete your comment
  delete                                 delete the open image (owners only)
  upload <path> [description]            upload an image
  quit
`)
}

func (s *shell) login(ctx context.Context, args []string) {
	if len(args) < 2 {
		s.notifier.Show("Usage: login <username-or-email> <password>")
		return
	}
	user, err := s.session.Login(ctx, args[0], args[1])
	if err != nil {
		s.notifier.Show("Login failed: " + errMessage(err))
		return
	}
	s.notifier.Show(fmt.Sprintf("Welcome back, %s!", user.Username))
	s.showProfile(ctx)
}

func (s *shell) register(ctx context.Context, args []string) {
	if len(args) < 4 {
		s.notifier.Show("Usage: register <username> <email> <password> <user-type>")
		return
	}
	if err := s.session.Register(ctx, args[0], args[1], args[2], args[3]); err != nil {
		s.notifier.Show("Registration failed: " + errMessage(err))
		return
	}
	s.notifier.Show("Registration successful! Please login.")
}

func (s *shell) logout() {
	if err := s.session.Logout(); err != nil {
		s.notifier.Show("Logout failed: " + errMessage(err))
		return
	}
	s.notifier.Show("You have been logged out")
}

func (s *shell) showFeed(ctx context.Context) {
	images, err := s.feed.LoadFeed(ctx)
	if err != nil {
		s.notifier.Show("Failed to load content. Please try again later.")
		return
	}
	s.lastImages = images
	s.onProfile = false
	items := view.BuildFeed(ctx, images, s.interactions, s.session.CurrentID())
	s.renderer.Feed(items)
}

func (s *shell) showProfile(ctx context.Context) {
	user, ok := s.session.Current()
	if !ok {
		s.notifier.Show("Please login to view your profile")
		return
	}
	images, err := s.feed.LoadGallery(ctx, user.ID)
	if err != nil {
		s.notifier.Show("Failed to load your images. Please try again later.")
		return
	}
	s.lastImages = images
	s.onProfile = true
	fmt.Fprintf(s.out, "@%s (%s) %s\n", user.Username, view.UserTypeLabel(user.UserType), user.Email)
	s.renderer.Grid(images, view.MsgEmptyProfile)
}

func (s *shell) doSearch(ctx context.Context, term string) {
	result, err := s.search.Search(ctx, term)
	if err != nil {
		s.notifier.Show("Search failed. Please try again.")
		return
	}
	s.renderSearch(result)
}

func (s *shell) setMode(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.notifier.Show("Usage: mode accounts|content")
		return
	}
	result, err := s.search.SetMode(ctx, services.Mode(args[0]))
	if err != nil {
		s.notifier.Show(errMessage(err))
		return
	}
	s.renderSearch(result)
}

func (s *shell) renderSearch(result *services.SearchResult) {
	if result.Prompt != "" {
		s.renderer.Message(result.Prompt)
		return
	}
	if result.Mode == services.ModeAccounts {
		s.lastUsers = result.Users
		s.renderer.Users(view.BuildUserRows(result.Users))
		return
	}
	s.lastImages = result.Images
	s.onProfile = false
	s.renderer.Grid(result.Images, view.MsgNoIdeasFound)
}

func (s *shell) openUser(ctx context.Context, args []string) {
	idx, ok := s.index(args, len(s.lastUsers))
	if !ok {
		return
	}
	profile, err := s.search.LoadProfile(ctx, s.lastUsers[idx].ID)
	if err != nil {
		s.notifier.Show("Failed to load user content.")
		return
	}
	s.lastImages = profile.Images
	s.onProfile = false
	s.renderer.Profile(profile.Profile, profile.Images, view.MsgUserNoImages)
}

func (s *shell) openDetail(ctx context.Context, args []string) {
	idx, ok := s.index(args, len(s.lastImages))
	if !ok {
		return
	}
	st, err := s.detail.Open(ctx, s.lastImages[idx])
	if err != nil {
		if errors.Is(err, services.ErrStale) {
			return
		}
		s.notifier.Show("Failed to load image details.")
		return
	}
	s.renderer.Detail(st, s.session.CurrentID())
}

func (s *shell) toggle(ctx context.Context, fn func(context.Context) (services.DetailState, error), loginMsg string) {
	if s.session.CurrentID() == 0 {
		s.notifier.Show(loginMsg)
		return
	}
	st, err := fn(ctx)
	if err != nil {
		if errors.Is(err, services.ErrClosed) {
			s.notifier.Show("Open an image first")
			return
		}
		if !errors.Is(err, services.ErrStale) {
			s.notifier.Show("Action failed: " + errMessage(err))
		}
	}
	s.renderer.Detail(st, s.session.CurrentID())
}

func (s *shell) toggleFollow(ctx context.Context) {
	st, err := s.detail.ToggleFollow(ctx)
	if err != nil {
		if errors.Is(err, services.ErrClosed) {
			s.notifier.Show("Open an image first")
			return
		}
		if !errors.Is(err, services.ErrStale) {
			s.notifier.Show("Follow failed: " + errMessage(err))
		}
		return
	}
	s.renderer.Detail(st, s.session.CurrentID())
}

func (s *shell) addComment(ctx context.Context, content string) {
	if s.session.CurrentID() == 0 {
		s.notifier.Show(view.MsgLoginToComment)
		return
	}
	st, err := s.detail.AddComment(ctx, content)
	if err != nil {
		s.commentError(err)
		return
	}
	s.renderer.Detail(st, s.session.CurrentID())
}

func (s *shell) editComment(ctx context.Context, args []string, line string) {
	if len(args) < 2 {
		s.notifier.Show("Usage: edit <comment-id> <text>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		s.notifier.Show("Comment id must be a number")
		return
	}
	st, err := s.detail.EditComment(ctx, id, rest(line, 2))
	if err != nil {
		s.commentError(err)
		return
	}
	s.renderer.Detail(st, s.session.CurrentID())
}

func (s *shell) removeComment(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.notifier.Show("Usage: rmcomment <comment-id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		s.notifier.Show("Comment id must be a number")
		return
	}
	st, err := s.detail.RemoveComment(ctx, id)
	if err != nil {
		s.commentError(err)
		return
	}
	s.renderer.Detail(st, s.session.CurrentID())
}

func (s *shell) commentError(err error) {
	switch {
	case errors.Is(err, services.ErrEmptyContent):
		s.notifier.Show("Comment cannot be empty")
	case errors.Is(err, services.ErrClosed):
		s.notifier.Show("Open an image first")
	case errors.Is(err, services.ErrStale):
	default:
		s.notifier.Show("Comment failed: " + errMessage(err))
	}
}

func (s *shell) deleteImage(ctx context.Context) {
	if err := s.detail.DeleteImage(ctx, s.feed); err != nil {
		if errors.Is(err, services.ErrClosed) {
			s.notifier.Show("Open an image first")
			return
		}
		s.notifier.Show("Delete failed: " + errMessage(err))
		return
	}
	s.notifier.Show("Image deleted successfully")
	if s.onProfile {
		s.showProfile(ctx)
	}
}

func (s *shell) upload(ctx context.Context, args []string, line string) {
	if s.session.CurrentID() == 0 {
		s.notifier.Show(view.MsgLoginToUpload)
		return
	}
	if len(args) < 1 {
		s.notifier.Show("Usage: upload <path> [description]")
		return
	}
	if _, err := s.feed.Upload(ctx, args[0], rest(line, 2)); err != nil {
		s.notifier.Show("Upload failed: " + errMessage(err))
		return
	}
	s.notifier.Show("Image uploaded successfully!")
	if s.onProfile {
		s.showProfile(ctx)
	}
}

// index parses a 1-based list index argument
func (s *shell) index(args []string, length int) (int, bool) {
	if len(args) != 1 {
		s.notifier.Show("Which one? Give a list number.")
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > length {
		s.notifier.Show("No such item")
		return 0, false
	}
	return n - 1, true
}

// rest returns the input line with its first n fields stripped,
// preserving interior spacing of the remainder.
func rest(line string, n int) string {
	fields := strings.Fields(line)
	if len(fields) <= n {
		return ""
	}
	idx := 0
	for i := 0; i < n; i++ {
		pos := strings.Index(line[idx:], fields[i])
		idx += pos + len(fields[i])
	}
	return strings.TrimSpace(line[idx:])
}

func errMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
