// Package spool implements a chat service on top of a directory tree. Each
// top-level directory is a server, each *.log file inside it is a channel,
// and every line of a channel file is one JSON-encoded message. Several
// clients pointed at the same tree see each other's messages through
// filesystem notifications.
package spool

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/chat"
)

const (
	channelExt      = ".log"
	tokenFile       = ".token"
	defaultSeenSize = 4096
)

var (
	// ErrUnauthorized is returned by Connect when the token does not match
	// the spool's .token file.
	ErrUnauthorized = errors.New("spool: unauthorized")
	// ErrLoggedOut is returned by requests made after Logout.
	ErrLoggedOut = errors.New("spool: logged out")
	// ErrUnknownChannel is returned by Send for malformed channel ids.
	ErrUnknownChannel = errors.New("spool: unknown channel")
)

// Options configure a Provider.
type Options struct {
	Root  string
	User  string
	Token string
	// SeenCacheSize bounds the message-id cache used to suppress duplicates
	// when a channel file is rewritten.
	SeenCacheSize int
}

// Provider is a backend.Provider and backend.Connector over a spool tree.
type Provider struct {
	root     string
	user     string
	token    string
	seenSize int

	mu        sync.Mutex
	loggedOut bool
}

// record is the on-disk form of a message.
type record struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	Sent   time.Time `json:"sent"`
}

// New returns a provider rooted at opts.Root.
func New(opts Options) *Provider {
	size := opts.SeenCacheSize
	if size <= 0 {
		size = defaultSeenSize
	}
	return &Provider{
		root:     filepath.Clean(opts.Root),
		user:     opts.User,
		token:    opts.Token,
		seenSize: size,
	}
}

// Connect checks the credential and starts watching the tree. Only messages
// written after Connect are delivered by the stream.
func (p *Provider) Connect(ctx context.Context) (backend.Stream, error) {
	info, err := os.Stat(p.root)
	if err != nil {
		return nil, fmt.Errorf("spool root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spool root %s: not a directory", p.root)
	}
	if err := p.authenticate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch spool: %w", err)
	}
	seen, err := lru.New[string, struct{}](p.seenSize)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("seen cache: %w", err)
	}
	s := &stream{
		root:    p.root,
		watcher: watcher,
		offsets: make(map[string]int64),
		seen:    seen,
	}
	if err := s.watch(p.root); err != nil {
		watcher.Close()
		return nil, err
	}
	servers, err := p.serverDirs()
	if err != nil {
		watcher.Close()
		return nil, err
	}
	for _, dir := range servers {
		if err := s.watchServer(filepath.Join(p.root, dir)); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return s, nil
}

func (p *Provider) authenticate() error {
	want, err := os.ReadFile(filepath.Join(p.root, tokenFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if strings.TrimSpace(string(want)) != strings.TrimSpace(p.token) {
		return ErrUnauthorized
	}
	return nil
}

func (p *Provider) checkSession() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loggedOut {
		return ErrLoggedOut
	}
	return nil
}

func (p *Provider) serverDirs() ([]string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Servers lists the server directories in name order.
func (p *Provider) Servers(ctx context.Context) ([]chat.ServerInfo, error) {
	if err := p.checkSession(); err != nil {
		return nil, err
	}
	dirs, err := p.serverDirs()
	if err != nil {
		return nil, err
	}
	servers := make([]chat.ServerInfo, 0, len(dirs))
	for _, dir := range dirs {
		servers = append(servers, chat.ServerInfo{ID: chat.ServerID(dir), Name: dir})
	}
	return servers, nil
}

// Channels lists the channel files of a server in name order.
func (p *Provider) Channels(ctx context.Context, server chat.ServerID) ([]chat.ChannelInfo, error) {
	if err := p.checkSession(); err != nil {
		return nil, err
	}
	name := string(server)
	if !validName(name) {
		return nil, fmt.Errorf("list channels: invalid server %q", name)
	}
	entries, err := os.ReadDir(filepath.Join(p.root, name))
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	var channels []chat.ChannelInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != channelExt {
			continue
		}
		channel := strings.TrimSuffix(entry.Name(), channelExt)
		channels = append(channels, chat.ChannelInfo{
			ID:   channelID(name, channel),
			Name: channel,
			Kind: chat.KindText,
		})
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].Name < channels[j].Name })
	return channels, nil
}

// Send appends a message authored by the configured user.
func (p *Provider) Send(ctx context.Context, channel chat.ChannelID, text string) error {
	if err := p.checkSession(); err != nil {
		return err
	}
	path, err := p.channelPath(channel)
	if err != nil {
		return err
	}
	line, err := json.Marshal(record{
		ID:     uuid.NewString(),
		Author: p.user,
		Body:   text,
		Sent:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Logout ends the session; later requests fail with ErrLoggedOut.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedOut = true
	return nil
}

func (p *Provider) channelPath(id chat.ChannelID) (string, error) {
	server, channel, ok := strings.Cut(string(id), "/")
	if !ok || !validName(server) || !validName(channel) {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, id)
	}
	return filepath.Join(p.root, server, channel+channelExt), nil
}

func channelID(server, channel string) chat.ChannelID {
	return chat.ChannelID(server + "/" + channel)
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// stream turns filesystem notifications into messages. Recv is only ever
// called from one goroutine, so its bookkeeping is unguarded.
type stream struct {
	root    string
	watcher *fsnotify.Watcher
	offsets map[string]int64
	seen    *lru.Cache[string, struct{}]
	pending []chat.Message
}

func (s *stream) watch(dir string) error {
	if err := s.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

func (s *stream) watchServer(dir string) error {
	if err := s.watch(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != channelExt {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		offset, err := s.seed(path)
		if err != nil {
			continue
		}
		s.offsets[path] = offset
	}
	return nil
}

// seed marks every message already in path as seen, so a later rewrite of
// the file does not replay it, and returns the offset just past the last
// complete line.
func (s *stream) seed(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var offset int64
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
		offset += int64(len(line))
		var rec record
		if json.Unmarshal(line, &rec) == nil && rec.ID != "" {
			s.seen.Add(rec.ID, struct{}{})
		}
	}
}

func (s *stream) Recv(ctx context.Context) (chat.Message, error) {
	for len(s.pending) == 0 {
		select {
		case <-ctx.Done():
			return chat.Message{}, ctx.Err()
		case evt, ok := <-s.watcher.Events:
			if !ok {
				return chat.Message{}, fsnotify.ErrClosed
			}
			if err := s.handle(evt); err != nil {
				return chat.Message{}, err
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return chat.Message{}, fsnotify.ErrClosed
			}
			return chat.Message{}, fmt.Errorf("watch spool: %w", err)
		}
	}
	msg := s.pending[0]
	s.pending = s.pending[1:]
	return msg, nil
}

func (s *stream) Close() error {
	return s.watcher.Close()
}

func (s *stream) handle(evt fsnotify.Event) error {
	rel, err := filepath.Rel(s.root, evt.Name)
	if err != nil {
		return nil
	}
	parts := strings.Split(rel, string(filepath.Separator))
	switch {
	case len(parts) == 1 && evt.Has(fsnotify.Create):
		info, err := os.Stat(evt.Name)
		if err != nil || !info.IsDir() || strings.HasPrefix(parts[0], ".") {
			return nil
		}
		return s.watchServer(evt.Name)
	case len(parts) == 2 && filepath.Ext(parts[1]) == channelExt:
		if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
			delete(s.offsets, evt.Name)
			return nil
		}
		if evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) {
			channel := strings.TrimSuffix(parts[1], channelExt)
			return s.readNew(evt.Name, channelID(parts[0], channel))
		}
	}
	return nil
}

// readNew queues every complete line appended since the last read. A file
// that shrank is re-read from the start; the seen cache drops repeats.
func (s *stream) readNew(path string, channel chat.ChannelID) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open channel: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat channel: %w", err)
	}
	offset := s.offsets[path]
	if info.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek channel: %w", err)
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// Partial trailing line; pick it up on the next write.
			break
		}
		if err != nil {
			s.offsets[path] = offset
			return fmt.Errorf("read channel: %w", err)
		}
		offset += int64(len(line))
		s.enqueue(line, channel)
	}
	s.offsets[path] = offset
	return nil
}

func (s *stream) enqueue(line []byte, channel chat.ChannelID) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil || rec.ID == "" {
		return
	}
	if s.seen.Contains(rec.ID) {
		return
	}
	s.seen.Add(rec.ID, struct{}{})
	s.pending = append(s.pending, chat.Message{
		ID:        rec.ID,
		Author:    rec.Author,
		Body:      rec.Body,
		ChannelID: channel,
		Sent:      rec.Sent,
	})
}

var (
	_ backend.Provider  = (*Provider)(nil)
	_ backend.Connector = (*Provider)(nil)
)
