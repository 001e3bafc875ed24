package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"wise-investing/internal/dto"
	"wise-investing/internal/model"
	"wise-investing/pkg/utils"

	"github.com/stretchr/testify/mock"
)

type mockQuoteRepo struct {
	mock.Mock
}

func (m *mockQuoteRepo) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	args := m.Called(ctx, symbol)
	quote, _ := args.Get(0).(*dto.Quote)
	return quote, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, chatID int64, message string) error {
	args := m.Called(ctx, chatID, message)
	return args.Error(0)
}

type mockAlertService struct {
	mock.Mock
}

func (m *mockAlertService) Evaluate(stocks []dto.EnrichedStock) []dto.AlertCandidate {
	args := m.Called(stocks)
	candidates, _ := args.Get(0).([]dto.AlertCandidate)
	return candidates
}

func (m *mockAlertService) RunAlertPass(ctx context.Context, trigger string) (*dto.AlertRunResult, error) {
	args := m.Called(ctx, trigger)
	result, _ := args.Get(0).(*dto.AlertRunResult)
	return result, args.Error(1)
}

func priceQuote(symbol string, price float64) *dto.Quote {
	return &dto.Quote{
		Symbol:             symbol,
		RegularMarketPrice: utils.ToPointer(price),
		Currency:           "USD",
	}
}

// memStore is an in-memory stand-in for the postgres repositories.
type memStore struct {
	mu           sync.Mutex
	nextID       uint
	users        map[uint]*model.User
	watchlists   map[uint]*model.Watchlist
	stocks       map[uint]*model.Stock
	runs         map[uint]*model.AlertRun
	listUsersErr error
	staleMarker  map[uint]bool
	markerErr    map[uint]error

	beforeCreateMany func()
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[uint]*model.User{},
		watchlists:  map[uint]*model.Watchlist{},
		stocks:      map[uint]*model.Stock{},
		runs:        map[uint]*model.AlertRun{},
		staleMarker: map[uint]bool{},
		markerErr:   map[uint]error{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(email string, chatID *int64) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{ID: m.id(), Email: email, Name: email, TelegramChatID: chatID}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addWatchlist(userID uint, name string) *model.Watchlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &model.Watchlist{ID: m.id(), UserID: userID, Name: name}
	m.watchlists[w.ID] = w
	return w
}

func (m *memStore) addStock(watchlistID uint, symbol string, purchase *float64) *model.Stock {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.Stock{ID: m.id(), WatchlistID: watchlistID, Symbol: symbol, Name: symbol + " Inc.", PurchasePrice: purchase}
	m.stocks[s.ID] = s
	return s
}

func (m *memStore) stock(id uint) model.Stock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.stocks[id]
}

func (m *memStore) alertRuns() []model.AlertRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []model.AlertRun
	for _, r := range m.runs {
		runs = append(runs, *r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs
}

type userStore struct{ *memStore }

func (s userStore) GetByEmail(_ context.Context, email string, _ ...utils.DBOption) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, dto.ErrNotFound)
}

func (s userStore) GetByID(_ context.Context, id uint, _ ...utils.DBOption) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, dto.ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (s userStore) GetUsersWithTelegram(_ context.Context, _ ...utils.DBOption) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listUsersErr != nil {
		return nil, s.listUsersErr
	}
	var users []model.User
	for _, u := range s.users {
		if u.TelegramChatID != nil {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s userStore) CreateUser(_ context.Context, user *model.User, _ ...utils.DBOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.id()
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s userStore) LinkTelegramChat(_ context.Context, userID uint, chatID int64, _ ...utils.DBOption) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.TelegramChatID != nil {
		return false, nil
	}
	u.TelegramChatID = utils.ToPointer(chatID)
	return true, nil
}

type watchlistStore struct{ *memStore }

func (s watchlistStore) Get(_ context.Context, param model.GetWatchlistParam, _ ...utils.DBOption) ([]model.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Watchlist
	for _, w := range s.watchlists {
		if len(param.IDs) > 0 && !containsID(param.IDs, w.ID) {
			continue
		}
		if param.UserID != nil && w.UserID != *param.UserID {
			continue
		}
		if len(param.Names) > 0 && !slices.Contains(param.Names, w.Name) {
			continue
		}
		c := *w
		c.Stocks = nil
		if param.PreloadStocks {
			c.Stocks = []model.Stock{}
			for _, st := range s.stocks {
				if st.WatchlistID == w.ID {
					c.Stocks = append(c.Stocks, *st)
				}
			}
			sort.Slice(c.Stocks, func(i, j int) bool { return c.Stocks[i].ID < c.Stocks[j].ID })
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s watchlistStore) GetByID(_ context.Context, id uint, _ ...utils.DBOption) (*model.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.watchlists[id]
	if !ok {
		return nil, fmt.Errorf("watchlist %d: %w", id, dto.ErrNotFound)
	}
	c := *w
	return &c, nil
}

func (s watchlistStore) Create(_ context.Context, watchlist *model.Watchlist, _ ...utils.DBOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	watchlist.ID = s.id()
	c := *watchlist
	s.watchlists[c.ID] = &c
	return nil
}

// CreateMany skips (user, name) pairs that already exist, like ON CONFLICT DO NOTHING.
func (s watchlistStore) CreateMany(ctx context.Context, watchlists []model.Watchlist, opts ...utils.DBOption) error {
	if s.beforeCreateMany != nil {
		s.beforeCreateMany()
	}
	for i := range watchlists {
		if s.hasWatchlist(watchlists[i].UserID, watchlists[i].Name) {
			continue
		}
		if err := s.Create(ctx, &watchlists[i], opts...); err != nil {
			return err
		}
	}
	return nil
}

func (s watchlistStore) hasWatchlist(userID uint, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.watchlists {
		if w.UserID == userID && w.Name == name {
			return true
		}
	}
	return false
}

func (s watchlistStore) CountByUser(_ context.Context, userID uint, _ ...utils.DBOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, w := range s.watchlists {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

type stockStore struct{ *memStore }

func (s stockStore) Get(_ context.Context, param model.GetStockParam, _ ...utils.DBOption) ([]model.Stock, error) {
	if len(param.IDs) == 0 && len(param.WatchlistIDs) == 0 && param.UserID == nil {
		return nil, fmt.Errorf("no filter provided")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Stock
	for _, st := range s.stocks {
		if len(param.IDs) > 0 && !containsID(param.IDs, st.ID) {
			continue
		}
		if len(param.WatchlistIDs) > 0 && !containsID(param.WatchlistIDs, st.WatchlistID) {
			continue
		}
		if param.UserID != nil {
			w, ok := s.watchlists[st.WatchlistID]
			if !ok || w.UserID != *param.UserID {
				continue
			}
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s stockStore) Create(_ context.Context, stock *model.Stock, _ ...utils.DBOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stock.ID = s.id()
	c := *stock
	s.stocks[c.ID] = &c
	return nil
}

func (s stockStore) Update(_ context.Context, id uint, param model.UpdateStockParam, _ ...utils.DBOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stocks[id]
	if !ok {
		return nil
	}
	if param.Symbol != nil {
		st.Symbol = *param.Symbol
	}
	if param.Name != nil {
		st.Name = *param.Name
	}
	if param.PurchasePrice != nil {
		st.PurchasePrice = utils.ToPointer(*param.PurchasePrice)
	}
	return nil
}

func (s stockStore) Delete(_ context.Context, ids []uint, _ ...utils.DBOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.stocks[id]; ok {
			delete(s.stocks, id)
			n++
		}
	}
	return n, nil
}

func (s stockStore) MoveToWatchlist(_ context.Context, ids []uint, watchlistID uint, _ ...utils.DBOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if st, ok := s.stocks[id]; ok {
			st.WatchlistID = watchlistID
			n++
		}
	}
	return n, nil
}

func (s stockStore) UpdateLastNotifiedPercent(_ context.Context, id uint, previous *float64, percent float64, _ ...utils.DBOption) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.markerErr[id]; err != nil {
		return false, err
	}
	st, ok := s.stocks[id]
	if !ok || s.staleMarker[id] {
		return false, nil
	}
	current := st.LastNotifiedPercent
	if (previous == nil) != (current == nil) || (previous != nil && *previous != *current) {
		return false, nil
	}
	st.LastNotifiedPercent = utils.ToPointer(percent)
	return true, nil
}

type alertRunStore struct{ *memStore }

func (s alertRunStore) Create(_ context.Context, run *model.AlertRun, _ ...utils.DBOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = s.id()
	c := *run
	s.runs[c.ID] = &c
	return nil
}

func (s alertRunStore) Update(_ context.Context, run *model.AlertRun, _ ...utils.DBOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *run
	s.runs[c.ID] = &c
	return nil
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
