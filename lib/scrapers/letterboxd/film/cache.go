package film

import (
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
)

var errRuntimeNotMemoized = badger.ErrKeyNotFound

// runtimeCache memoizes per-film runtime lookups so a diary enrichment run
// never fetches the same film page twice. It is scoped to whatever badger DB
// the caller hands in, usually an in-memory one.
type runtimeCache struct {
	db      *badger.DB
	baseUrl *url.URL
}

func (c runtimeCache) key(slug string) (string, error) {
	full, err := c.baseUrl.Parse("/film/" + slug + "/")
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		full,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return "runtime:" + normalized, nil
}

func (c runtimeCache) get(slug string) (int, error) {
	key, err := c.key(slug)
	if err != nil {
		return 0, err
	}
	var minutes int
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			minutes, err = strconv.Atoi(string(val))
			return err
		})
	})
	if err != nil {
		return 0, err
	}
	return minutes, nil
}

func (c runtimeCache) set(slug string, minutes int) error {
	key, err := c.key(slug)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(strconv.Itoa(minutes)))
	})
}
