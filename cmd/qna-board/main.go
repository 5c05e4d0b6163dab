package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/renderinc/qna-board/internal/bootstrap"
	"github.com/renderinc/qna-board/internal/config"
	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/storage"
	"github.com/renderinc/qna-board/internal/ui"
	"github.com/renderinc/qna-board/internal/view"
	"github.com/renderinc/qna-board/internal/web"
)

var cfg config.Config

func main() {
	cfg = config.Load()

	// Parse global flags
	globalFlags := flag.NewFlagSet("global", flag.ExitOnError)
	dataDirFlag := globalFlags.String("data-dir", cfg.DataDir, "Directory for the client database")
	apiURLFlag := globalFlags.String("api-url", cfg.APIURL, "QnA server address")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Find where the command starts (skip global flags)
	commandIdx := 1
	for i := 1; i < len(os.Args); i++ {
		if !strings.HasPrefix(os.Args[i], "-") {
			commandIdx = i
			break
		}
	}
	if commandIdx > 1 {
		globalFlags.Parse(os.Args[1:commandIdx])
	}
	cfg.DataDir = *dataDirFlag
	cfg.APIURL = strings.TrimRight(*apiURLFlag, "/")

	command := os.Args[commandIdx]
	args := os.Args[commandIdx+1:]

	switch command {
	case "serve":
		serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
		host := serveFlags.String("host", cfg.Host, "Host to bind to")
		port := serveFlags.String("port", cfg.Port, "Port to listen on")
		serveFlags.Parse(args)

		cfg.Host, cfg.Port = *host, *port
		runServe()
	case "login":
		loginFlags := flag.NewFlagSet("login", flag.ExitOnError)
		dev := loginFlags.Bool("dev", false, "Mint an unsigned development token")
		userID := loginFlags.Int64("user-id", 1, "User id for -dev")
		account := loginFlags.String("account", "user", "Account name for -dev (\"admin\" for admin rights)")
		hours := loginFlags.Int("hours", 24, "Validity in hours for -dev")
		loginFlags.Parse(args)

		var token string
		switch {
		case *dev:
			token = qna.DevToken(*userID, *account, time.Now().Add(time.Duration(*hours)*time.Hour))
		case loginFlags.NArg() > 0:
			token = loginFlags.Arg(0)
		default:
			fmt.Println("Error: token required (or use -dev)")
			fmt.Println("Usage: qna-board login [-dev] [token]")
			os.Exit(1)
		}
		runLogin(token)
	case "logout":
		runLogout()
	case "whoami":
		runWhoami()
	case "list":
		listFlags := flag.NewFlagSet("list", flag.ExitOnError)
		page := listFlags.Int("page", 0, "Page number (0-based)")
		size := listFlags.Int("size", ui.DefaultPageSize, "Posts per page")
		keyword := listFlags.String("keyword", "", "Search keyword")
		category := listFlags.String("category", "", "Category filter")
		status := listFlags.String("status", "", "Answer status filter")
		mine := listFlags.Bool("mine", false, "Only my posts")
		listFlags.Parse(args)

		runList(qna.ListParams{
			Page: *page, Size: *size, Keyword: *keyword,
			Category: *category, AnswerStatus: *status, MyPostsOnly: *mine,
		})
	case "get":
		runGet(requireID(args, "get <post-id>"))
	case "create":
		createFlags := flag.NewFlagSet("create", flag.ExitOnError)
		category := createFlags.String("category", qna.CategoryGeneral, "Category")
		title := createFlags.String("title", "", "Title")
		content := createFlags.String("content", "", "Content")
		locked := createFlags.Bool("locked", true, "Private post")
		image := createFlags.String("image", "", "Image file to attach")
		createFlags.Parse(args)

		runCreate(qna.PostInput{
			Category: *category, Title: *title, Content: *content,
			IsLocked: *locked, Image: loadImage(*image),
		})
	case "update":
		updateFlags := flag.NewFlagSet("update", flag.ExitOnError)
		category := updateFlags.String("category", "", "New category")
		title := updateFlags.String("title", "", "New title")
		content := updateFlags.String("content", "", "New content")
		locked := updateFlags.String("locked", "", "New privacy (true or false)")
		image := updateFlags.String("image", "", "Replacement image file")
		deleteImage := updateFlags.Bool("delete-image", false, "Remove the current image")
		updateFlags.Parse(args)

		id := requireID(updateFlags.Args(), "update [flags] <post-id>")
		up := qna.PostUpdate{
			Category: *category, Title: *title, Content: *content,
			DeleteImage: *deleteImage, Image: loadImage(*image),
		}
		if *locked != "" {
			v, err := strconv.ParseBool(*locked)
			if err != nil {
				log.Fatalf("Error: -locked must be true or false")
			}
			up.IsLocked = &v
		}
		runUpdate(id, up)
	case "delete":
		runDelete(requireID(args, "delete <post-id>"))
	case "replies":
		runReplies(requireID(args, "replies <post-id>"))
	case "reply":
		runReply(requireID(args, "reply <post-id> <content>"), strings.Join(args[1:], " "))
	case "reply-update":
		runReplyUpdate(requireID(args, "reply-update <reply-id> <content>"), strings.Join(args[1:], " "))
	case "reply-delete":
		runReplyDelete(requireID(args, "reply-delete <reply-id>"))
	case "stats":
		runStats()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("QnA Board - client for the QnA board API")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  qna-board [global-flags] <command> [flags]")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --data-dir=<dir>  Directory for the client database (default: ./data, env QNA_DATA_DIR)")
	fmt.Println("  --api-url=<url>   QnA server address (default: http://localhost:8080, env QNA_API_URL)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve [flags]                      Serve the board UI in the browser")
	fmt.Println("  login [-dev] [token]               Store an access token")
	fmt.Println("  logout                             Forget the stored token")
	fmt.Println("  whoami                             Show the current session")
	fmt.Println("  list [flags]                       List posts")
	fmt.Println("  get <post-id>                      Show a post with its replies")
	fmt.Println("  create [flags]                     Create a post")
	fmt.Println("  update [flags] <post-id>           Update a post")
	fmt.Println("  delete <post-id>                   Delete a post")
	fmt.Println("  replies <post-id>                  List the replies of a post")
	fmt.Println("  reply <post-id> <content>          Answer a post (admin)")
	fmt.Println("  reply-update <reply-id> <content>  Edit a reply (admin)")
	fmt.Println("  reply-delete <reply-id>            Delete a reply (admin)")
	fmt.Println("  stats                              Show client state")
	fmt.Println()
	fmt.Println("Serve Flags:")
	fmt.Println("  -host=<host>      Host to bind to (default: localhost)")
	fmt.Println("  -port=<port>      Port to listen on (default: 8090)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  qna-board login -dev -account=admin")
	fmt.Println("  qna-board list -keyword=refund -status=답변대기")
	fmt.Println("  qna-board create -title=\"Where is my order\" -content=\"...\" -image=./shot.png")
	fmt.Println("  qna-board serve -port=3000")
}

func requireID(args []string, usage string) int64 {
	if len(args) < 1 {
		fmt.Println("Error: id required")
		fmt.Printf("Usage: qna-board %s\n", usage)
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		log.Fatalf("Error: invalid id %q", args[0])
	}
	return id
}

func loadImage(path string) *qna.ImageFile {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading image: %v", err)
	}
	f := qna.NewImageFile(filepath.Base(path), data)
	if v := qna.ValidateFile(f); !v.IsValid {
		log.Fatalf("Error: %s", strings.Join(v.Errors, " "))
	}
	return f
}

// openClient opens both stores and a client over them. QNA_TOKEN, when
// set, replaces the stored token.
func openClient() (*qna.Client, *storage.DB, *storage.SessionStore, func()) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}

	db, err := storage.Open(cfg.DBPath())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	sess, err := storage.OpenSession()
	if err != nil {
		db.Close()
		log.Fatalf("Error opening session store: %v", err)
	}

	client := qna.NewClient(cfg.APIURL, db, sess)
	if cfg.Token != "" && cfg.Token != client.Token() {
		if err := client.SetToken(cfg.Token); err != nil {
			log.Printf("Warning: could not store QNA_TOKEN: %v", err)
		}
	}

	return client, db, sess, func() {
		sess.Close()
		db.Close()
	}
}

func requireSession(client *qna.Client) {
	if !client.IsLoggedIn() {
		log.Fatal("Error: not logged in (run: qna-board login <token>)")
	}
}

func apiError(action string, err error) {
	var he *qna.HTTPError
	if errors.As(err, &he) {
		log.Fatalf("Error %s: %s (HTTP %d)", action, he.Message, he.Status)
	}
	log.Fatalf("Error %s: %v", action, err)
}

func runServe() {
	client, _, sess, closeStores := openClient()
	defer closeStores()

	ctrl := ui.New(client, ui.Options{ImageBase: cfg.APIURL})
	app := bootstrap.New(ctrl, sess, bootstrap.Options{BaseURL: cfg.PageURL()})
	defer app.Close()

	server, err := web.NewServer(app, client.BaseURL())
	if err != nil {
		log.Fatalf("Error creating server: %v", err)
	}

	fmt.Println()
	fmt.Println("=== QnA Board ===")
	fmt.Printf("API:               %s\n", client.BaseURL())
	fmt.Printf("Server running at: %s\n", cfg.PageURL())
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	if err := http.ListenAndServe(cfg.Addr(), server.Handler()); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}

func runLogin(token string) {
	client, _, _, closeStores := openClient()
	defer closeStores()

	s, err := qna.DecodeToken(token)
	if err != nil {
		log.Fatalf("Error: invalid token: %v", err)
	}
	if err := client.SetToken(token); err != nil {
		log.Fatalf("Error saving token: %v", err)
	}

	fmt.Printf("✓ Logged in as %s (user %d)\n", s.UserAccount, s.UserID)
	if !s.ExpiresAt.After(time.Now()) {
		fmt.Println("Warning: this token has already expired")
	}
}

func runLogout() {
	client, _, _, closeStores := openClient()
	defer closeStores()

	client.RemoveToken()
	fmt.Println("✓ Logged out")
}

func runWhoami() {
	client, _, _, closeStores := openClient()
	defer closeStores()

	s := client.CurrentUser()
	if s == nil {
		fmt.Println("Not logged in")
		return
	}

	role := "user"
	if s.IsAdmin {
		role = "admin"
	}
	fmt.Printf("Account: %s\n", s.UserAccount)
	fmt.Printf("User ID: %d\n", s.UserID)
	fmt.Printf("Role:    %s\n", role)
	fmt.Printf("Expires: %s", s.ExpiresAt.Format(time.RFC3339))
	if client.IsTokenExpired() {
		fmt.Print(" (expired)")
	}
	fmt.Println()
}

func runList(params qna.ListParams) {
	client, _, _, closeStores := openClient()
	defer closeStores()

	res, err := client.ListPosts(context.Background(), params)
	if err != nil {
		apiError("listing posts", err)
	}

	if len(res.Data) == 0 {
		fmt.Println("No posts found")
		return
	}

	now := time.Now()
	fmt.Printf("Page %d of %d (%d posts)\n\n", res.CurrentPage+1, res.TotalPages, res.TotalElements)
	for _, p := range res.Data {
		flags := ""
		if p.IsLocked {
			flags += " [locked]"
		}
		if p.HasImage {
			flags += " [image]"
		}
		if p.IsOwner {
			flags += " [mine]"
		}
		fmt.Printf("#%d %s%s\n", p.QnaID, view.TruncateText(view.StripHTML(p.Title), 60), flags)
		fmt.Printf("   %s · %s · %s · %s · %d views · %d replies\n",
			p.Category, p.AnswerStatus, p.UserNickname, view.FormatDate(p.CreatedAt.Time, now), p.ViewCount, p.ReplyCount)
	}
}

func runGet(id int64) {
	client, _, _, closeStores := openClient()
	defer closeStores()

	ctx := context.Background()
	p, err := client.GetPost(ctx, id)
	if err != nil {
		apiError("getting post", err)
	}

	fmt.Printf("#%d %s\n", p.QnaID, view.StripHTML(p.Title))
	fmt.Printf("%s · %s · %s · %s\n", p.Category, p.AnswerStatus, p.UserNickname, p.CreatedAt.Time.Format("2006-01-02 15:04"))
	if p.ImagePath != "" {
		fmt.Printf("Image: %s%s\n", cfg.APIURL, p.ImagePath)
	}
	fmt.Println()
	fmt.Println(p.Content)

	replies, err := client.ListReplies(ctx, id)
	if err != nil {
		log.Printf("Warning: could not load replies: %v", err)
		replies = p.Replies
	}
	printReplies(replies)
}

func printReplies(replies []qna.Reply) {
	fmt.Println()
	if len(replies) == 0 {
		fmt.Println("No replies yet")
		return
	}
	fmt.Printf("=== %d replies ===\n", len(replies))
	for _, r := range replies {
		fmt.Printf("\n[%d] %s · %s\n", r.ReplyID, r.AdminNickname, r.CreatedAt.Time.Format("2006-01-02 15:04"))
		fmt.Println(r.ReplyContent)
	}
}

func runCreate(in qna.PostInput) {
	client, _, _, closeStores := openClient()
	defer closeStores()
	requireSession(client)

	in.Title, in.Content = strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if in.Title == "" || in.Content == "" {
		log.Fatal("Error: -title and -content are required")
	}

	p, err := client.CreatePost(context.Background(), in)
	if err != nil {
		apiError("creating post", err)
	}
	fmt.Printf("✓ Created post #%d\n", p.QnaID)
}

func runUpdate(id int64, up qna.PostUpdate) {
	client, _, _, closeStores := openClient()
	defer closeStores()
	requireSession(client)

	if up.IsEmpty() {
		fmt.Println("Nothing to update")
		return
	}
	if _, err := client.UpdatePost(context.Background(), id, up); err != nil {
		apiError("updating post", err)
	}
	fmt.Printf("✓ Updated post #%d\n", id)
}

func runDelete(id int64) {
	client, _, _, closeStores := openClient()
	defer closeStores()
	requireSession(client)

	if err := client.DeletePost(context.Background(), id); err != nil {
		apiError("deleting post", err)
	}
	fmt.Printf("✓ Deleted post #%d\n", id)
}

func runReplies(postID int64) {
	client, _, _, closeStores := openClient()
	defer closeStores()

	replies, err := client.ListReplies(context.Background(), postID)
	if err != nil {
		apiError("listing replies", err)
	}
	printReplies(replies)
}

func requireContent(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		log.Fatal("Error: reply content required")
	}
	return content
}

func runReply(postID int64, content string) {
	client, _, _, closeStores := openClient()
	defer closeStores()
	requireSession(client)

	r, err := client.CreateReply(context.Background(), postID, requireContent(content))
	if err != nil {
		apiError("creating reply", err)
	}
	fmt.Printf("✓ Created reply #%d on post #%d\n", r.ReplyID, postID)
}

func runReplyUpdate(replyID int64, content string) {
	client, _, _, closeStores := openClient()
	defer closeStores()
	requireSession(client)

	if _, err := client.UpdateReply(context.Background(), replyID, requireContent(content)); err != nil {
		apiError("updating reply", err)
	}
	fmt.Printf("✓ Updated reply #%d\n", replyID)
}

func runReplyDelete(replyID int64) {
	client, _, _, closeStores := openClient()
	defer closeStores()
	requireSession(client)

	if err := client.DeleteReply(context.Background(), replyID); err != nil {
		apiError("deleting reply", err)
	}
	fmt.Printf("✓ Deleted reply #%d\n", replyID)
}

func runStats() {
	client, db, _, closeStores := openClient()
	defer closeStores()

	count, err := db.Count()
	if err != nil {
		log.Fatalf("Error getting database count: %v", err)
	}

	fmt.Println("=== Client State ===")
	fmt.Printf("Database:       %s\n", cfg.DBPath())
	fmt.Printf("Stored keys:    %d\n", count)
	fmt.Printf("API:            %s\n", client.BaseURL())

	saved, err := db.UpdatedAt(storage.TokenKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Println("Token:          none")
	case err != nil:
		log.Printf("Warning: reading token timestamp: %v", err)
	default:
		state := "valid"
		if client.IsTokenExpired() {
			state = "expired"
		}
		fmt.Printf("Token:          %s, saved %s\n", state, saved.Format(time.RFC3339))
	}
}
