package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"movie_explorer/internal/clients"
	"movie_explorer/internal/domain"
	"movie_explorer/internal/usecase"

	"github.com/sirupsen/logrus"
)

const helpText = `Commands:
  popular | now | top        load the first page of a listing
  more                       load the next page of the current list
  retry                      repeat the last failed request
  search <query>             search the catalog (debounced)
  flush                      run a pending search now
  movie <id>                 show details, director and main cast
  fav <id>                   toggle a movie from the current list as favorite
  favs [added|title|rating|year]
  register <email> <password> <name>
  login <email> <password>
  profile <name>             rename the signed-in user
  me | logout | help | quit`

var errQuit = errors.New("quit")

type shell struct {
	movies    usecase.MovieUseCase
	favorites domain.FavoritesUseCase
	auth      domain.AuthUseCase
	images    clients.Images
	search    *usecase.SearchSession
	log       *logrus.Logger

	mu     sync.Mutex
	out    io.Writer
	active *usecase.PagedList
	label  string
	// scope is the run context, used when a debounced search settles.
	scope context.Context
}

func newShell(movies usecase.MovieUseCase, favorites domain.FavoritesUseCase, auth domain.AuthUseCase,
	images clients.Images, debounce time.Duration, out io.Writer, logger *logrus.Logger) *shell {
	s := &shell{
		movies:    movies,
		favorites: favorites,
		auth:      auth,
		images:    images,
		log:       logger,
		out:       out,
	}
	s.search = usecase.NewSearchSession(movies.Search, favorites, debounce, logger)
	s.search.OnSettled(s.searchSettled)
	return s
}

// run reads commands until EOF or quit.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	defer s.search.Stop()
	s.mu.Lock()
	s.scope = ctx
	s.mu.Unlock()
	scanner := bufio.NewScanner(in)
	s.printf("Movie Explorer. Type 'help' for commands.\n> ")
	for scanner.Scan() {
		err := s.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.printf("error: %v\n", err)
		}
		s.printf("> ")
	}
	return scanner.Err()
}

func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
	case "quit", "exit":
		return errQuit
	case "popular":
		return s.openListing(ctx, usecase.ListingPopular)
	case "now":
		return s.openListing(ctx, usecase.ListingNowPlaying)
	case "top":
		return s.openListing(ctx, usecase.ListingTopRated)
	case "more":
		return s.more(ctx)
	case "retry":
		return s.retry(ctx)
	case "search":
		s.search.SetQuery(ctx, strings.Join(args, " "))
	case "flush":
		return s.search.Flush(ctx)
	case "movie":
		return s.movie(ctx, args)
	case "fav":
		return s.toggleFavorite(ctx, args)
	case "favs":
		order := ""
		if len(args) > 0 {
			order = args[0]
		}
		s.printFavorites(s.favorites.Sorted(ctx, usecase.ParseFavoriteSort(order)))
	case "register":
		if len(args) < 3 {
			return fmt.Errorf("usage: register <email> <password> <name>")
		}
		user, err := s.auth.Register(ctx, strings.Join(args[2:], " "), args[0], args[1])
		if err != nil {
			return err
		}
		s.printf("Welcome, %s (%s)\n", user.Name, user.Email)
	case "login":
		if len(args) < 1 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		password := ""
		if len(args) > 1 {
			password = args[1]
		}
		user, err := s.auth.Login(ctx, args[0], password)
		if err != nil {
			return err
		}
		s.printf("Signed in as %s\n", user.Name)
	case "logout":
		s.auth.Logout(ctx)
		s.printf("Signed out\n")
	case "me":
		user := s.auth.GetCurrentUser(ctx)
		if user == nil {
			s.printf("Not signed in\n")
			return nil
		}
		s.printf("%s <%s> since %s\n", user.Name, user.Email, user.CreatedAt.Format("2006-01-02"))
	case "profile":
		if len(args) == 0 {
			return fmt.Errorf("usage: profile <name>")
		}
		name := strings.Join(args, " ")
		user, err := s.auth.UpdateProfile(ctx, domain.ProfilePatch{Name: &name})
		if err != nil {
			return err
		}
		s.printf("Profile updated: %s\n", user.Name)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return nil
}

func (s *shell) openListing(ctx context.Context, listing usecase.Listing) error {
	fetch, err := s.movies.Fetcher(listing)
	if err != nil {
		return err
	}
	list := usecase.NewPagedList(fetch, s.favorites, s.log)
	s.setActive(list, string(listing))
	if err := list.Load(ctx); err != nil {
		return err
	}
	s.printList(ctx, list, string(listing))
	return nil
}

func (s *shell) more(ctx context.Context) error {
	list, label := s.current()
	if list == nil {
		return fmt.Errorf("no list open")
	}
	if !list.HasMore() {
		s.printf("No more results\n")
		return nil
	}
	if err := list.LoadMore(ctx); err != nil {
		return err
	}
	s.printList(ctx, list, label)
	return nil
}

func (s *shell) retry(ctx context.Context) error {
	list, label := s.current()
	if list == nil {
		return fmt.Errorf("no list open")
	}
	if err := list.Retry(ctx); err != nil {
		return err
	}
	s.printList(ctx, list, label)
	return nil
}

func (s *shell) searchSettled(query string, err error) {
	_, list := s.search.Current()
	if list == nil {
		s.setActive(nil, "")
		s.printf("Search cleared\n")
		return
	}
	label := "search: " + query
	s.setActive(list, label)
	if err != nil {
		s.printf("error: %v\n", err)
		return
	}
	s.mu.Lock()
	ctx := s.scope
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.printList(ctx, list, label)
}

func (s *shell) movie(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	page, err := s.movies.DetailPage(ctx, id)
	if err != nil {
		return err
	}
	d := page.Details
	s.printf("%s (%s)  %.1f/10  %s\n", d.Title, year(d.ReleaseDate), d.VoteAverage, page.Runtime)
	if d.Tagline != nil && *d.Tagline != "" {
		s.printf("  %q\n", *d.Tagline)
	}
	s.printf("  Poster: %s\n", s.images.ImageURL(clients.Deref(d.PosterPath), clients.PosterW500))
	if page.Director != nil {
		s.printf("  Director: %s\n", page.Director.Name)
	}
	for _, member := range page.MainCast {
		s.printf("  %s as %s\n", member.Name, member.Character)
	}
	if page.IsFavorite {
		s.printf("  In your favorites\n")
	}
	return nil
}

func (s *shell) toggleFavorite(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if list, _ := s.current(); list != nil {
		for _, item := range list.Items(ctx) {
			if item.ID == id {
				if s.favorites.Toggle(ctx, item.Movie) {
					s.printf("Added %s to favorites\n", item.Title)
				} else {
					s.printf("Removed %s from favorites\n", item.Title)
				}
				return nil
			}
		}
	}
	if s.favorites.Contains(ctx, id) {
		s.favorites.Remove(ctx, id)
		s.printf("Removed %d from favorites\n", id)
		return nil
	}
	return fmt.Errorf("movie %d is not in the current list", id)
}

func (s *shell) setActive(list *usecase.PagedList, label string) {
	s.mu.Lock()
	s.active, s.label = list, label
	s.mu.Unlock()
}

func (s *shell) current() (*usecase.PagedList, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.label
}

func (s *shell) printList(ctx context.Context, list *usecase.PagedList, label string) {
	state := list.State(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s: page %d of %d, %d results\n", label, state.Page, state.TotalPages, state.TotalResults)
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, item := range state.Items {
		mark := ""
		if item.IsFavorite {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\n", item.ID, item.Title, year(item.ReleaseDate), item.VoteAverage, mark)
	}
	tw.Flush()
	if state.HasMore {
		fmt.Fprintln(s.out, "(more available)")
	}
}

func (s *shell) printFavorites(favorites []domain.FavoriteMovie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(favorites) == 0 {
		fmt.Fprintln(s.out, "No favorites yet")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, f := range favorites {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\n", f.ID, f.Title, year(f.ReleaseDate), f.VoteAverage, f.AddedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func (s *shell) printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("a movie id is required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", args[0])
	}
	return id, nil
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "----"
}
