package main

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/config"
)

const (
	testImgKey = "7cd084941338484aae1ad9425b84077c"
	testSubKey = "4932caff0ff746eab6f01bf08b70ac45"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvCookie, "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func fakePlatform(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case bili.PathNav:
			w.Write([]byte(`{"code":-101,"data":{"wbi_img":{"img_url":"https://i0.hdslb.com/bfs/wbi/` + testImgKey + `.png","sub_url":"https://i0.hdslb.com/bfs/wbi/` + testSubKey + `.png"}}}`))
		case bili.PathView:
			w.Write([]byte(`{"code":0,"data":{"bvid":"BV1xx","cid":42,"title":"song","duration":90,"owner":{"mid":7,"name":"up"}}}`))
		case bili.PathListing:
			if r.URL.Query().Get("w_rid") == "" {
				t.Errorf("listing request is not signed: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"code":0,"data":{"list":{"vlist":[` +
				`{"bvid":"BVnew","title":"new one","author":"up","mid":7,"created":1700000000,"length":"03:00"},` +
				`{"bvid":"BVold","title":"old one","author":"up","mid":7,"created":1690000000,"length":"04:00"}` +
				`]},"page":{"pn":1,"ps":25,"count":2}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSignWithExplicitKeys(t *testing.T) {
	out, err := run(t, "sign", "--img", testImgKey, "--sub", testSubKey, "--wts", "1700000000",
		"foo=114", "bar=514", "zab=1919810")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	query := "bar=514&foo=114&wts=1700000000&zab=1919810"
	sum := md5.Sum([]byte(query + testImgKey + testSubKey))
	want := query + "&w_rid=" + hex.EncodeToString(sum[:])
	if got := strings.TrimSpace(out); got != want {
		t.Errorf("sign = %q, want %q", got, want)
	}
}

func TestSignRejectsBadParameter(t *testing.T) {
	if _, err := run(t, "sign", "--img", "a", "--sub", "b", "novalue"); err == nil {
		t.Error("expected error for parameter without '='")
	}
}

func TestSignFetchesKeys(t *testing.T) {
	srv := fakePlatform(t)
	out, err := run(t, "--base-url", srv.URL, "sign", "--wts", "1700000000", "mid=7")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	query := "mid=7&wts=1700000000"
	sum := md5.Sum([]byte(query + testImgKey + testSubKey))
	if got, want := strings.TrimSpace(out), query+"&w_rid="+hex.EncodeToString(sum[:]); got != want {
		t.Errorf("sign = %q, want %q", got, want)
	}
}

func TestInvalidSaltMode(t *testing.T) {
	if _, err := run(t, "--salt", "pepper", "sign", "--img", "a", "--sub", "b"); err == nil {
		t.Error("expected error for unknown salt mode")
	}
}

func TestResolve(t *testing.T) {
	srv := fakePlatform(t)
	out, err := run(t, "--base-url", srv.URL, "resolve", "BV1xx")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, want := range []string{"cid:      42", "title:    song", "owner:    up (7)", "duration: 1m30s"} {
		if !strings.Contains(out, want) {
			t.Errorf("resolve output missing %q:\n%s", want, out)
		}
	}
}

func TestListing(t *testing.T) {
	srv := fakePlatform(t)
	out, err := run(t, "--base-url", srv.URL, "listing", "--mid", "7")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if !strings.Contains(out, "BVnew") || !strings.Contains(out, "BVold") {
		t.Errorf("listing output missing videos:\n%s", out)
	}
	if !strings.Contains(out, "page 1/1, 2 videos") {
		t.Errorf("listing output missing page line:\n%s", out)
	}

	if _, err := run(t, "--base-url", srv.URL, "listing"); err == nil {
		t.Error("expected error without --mid")
	}
}

func TestCreatorsAndSync(t *testing.T) {
	srv := fakePlatform(t)
	state := filepath.Join(t.TempDir(), "state.json")
	base := []string{"--base-url", srv.URL, "--state", state}

	out, err := run(t, append(base, "creators", "add", "7")...)
	if err != nil {
		t.Fatalf("creators add: %v", err)
	}
	if !strings.Contains(out, "added up (7)") {
		t.Errorf("creators add = %q", out)
	}

	out, err = run(t, append(base, "creators", "list")...)
	if err != nil {
		t.Fatalf("creators list: %v", err)
	}
	if !strings.Contains(out, "7\tup\tsynced never") {
		t.Errorf("creators list = %q", out)
	}

	out, err = run(t, append(base, "sync", "7", "--dry-run")...)
	if err != nil {
		t.Fatalf("sync --dry-run: %v", err)
	}
	if !strings.Contains(out, "2 new videos from up") {
		t.Errorf("sync --dry-run = %q", out)
	}

	if _, err := run(t, append(base, "sync", "7")...); err != nil {
		t.Fatalf("sync: %v", err)
	}
	out, err = run(t, append(base, "creators", "list")...)
	if err != nil {
		t.Fatalf("creators list: %v", err)
	}
	if strings.Contains(out, "synced never") {
		t.Errorf("sync did not record the sync time: %q", out)
	}

	out, err = run(t, append(base, "sync", "7")...)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !strings.Contains(out, "no new videos") {
		t.Errorf("second sync = %q", out)
	}

	if _, err := run(t, append(base, "creators", "remove", "7")...); err != nil {
		t.Fatalf("creators remove: %v", err)
	}
	out, _ = run(t, append(base, "creators", "list")...)
	if strings.TrimSpace(out) != "no creators" {
		t.Errorf("creators list after remove = %q", out)
	}

	if _, err := run(t, append(base, "sync", "7")...); err == nil {
		t.Error("expected error syncing an unfollowed creator")
	}
}

func TestSyncKeepsUploadsPublishedDuringSync(t *testing.T) {
	var (
		mu        sync.Mutex
		published int64
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case bili.PathNav:
			w.Write([]byte(`{"code":0,"data":{"wbi_img":{"img_url":"https://x/` + testImgKey + `.png","sub_url":"https://x/` + testSubKey + `.png"}}}`))
			return
		case bili.PathListing:
		default:
			http.NotFound(w, r)
			return
		}

		vlist := `{"bvid":"BVold","title":"old","author":"up","created":1690000000}`
		mu.Lock()
		late := published
		mu.Unlock()
		if late > 0 {
			vlist = `{"bvid":"BVlate","title":"late","author":"up","created":` + strconv.FormatInt(late, 10) + `},` + vlist
		} else if r.URL.Query().Get("ps") != "1" {
			// The upload goes live after this page was served.
			time.Sleep(1100 * time.Millisecond)
			mu.Lock()
			published = time.Now().Unix()
			mu.Unlock()
		}
		w.Write([]byte(`{"code":0,"data":{"list":{"vlist":[` + vlist + `]},"page":{"pn":1,"ps":25,"count":2}}}`))
	}))
	t.Cleanup(srv.Close)

	base := []string{"--base-url", srv.URL, "--state", filepath.Join(t.TempDir(), "state.json")}
	if _, err := run(t, append(base, "creators", "add", "7")...); err != nil {
		t.Fatalf("creators add: %v", err)
	}

	out, err := run(t, append(base, "sync", "7")...)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if strings.Contains(out, "BVlate") {
		t.Fatalf("first sync saw the late upload: %q", out)
	}

	out, err = run(t, append(base, "sync", "7", "--dry-run")...)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !strings.Contains(out, "BVlate") {
		t.Errorf("upload published during the first sync was dropped: %q", out)
	}
	if strings.Contains(out, "BVold") {
		t.Errorf("second sync repeated an old upload: %q", out)
	}
}

func TestSyncTimeoutAppliesPerRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == bili.PathNav {
			w.Write([]byte(`{"code":0,"data":{"wbi_img":{"img_url":"https://x/a.png","sub_url":"https://x/b.png"}}}`))
			return
		}
		pn, _ := strconv.Atoi(r.URL.Query().Get("pn"))
		if r.URL.Query().Get("ps") != "1" {
			time.Sleep(400 * time.Millisecond)
		}
		video := `{"bvid":"BVp` + strconv.Itoa(pn) + `","title":"t","author":"up","created":` + strconv.Itoa(1700000000-pn) + `}`
		w.Write([]byte(`{"code":0,"data":{"list":{"vlist":[` + video + `]},"page":{"pn":` + strconv.Itoa(pn) + `,"ps":25,"count":60}}}`))
	}))
	t.Cleanup(srv.Close)

	base := []string{"--base-url", srv.URL, "--state", filepath.Join(t.TempDir(), "state.json"), "--timeout", "1s"}
	if _, err := run(t, append(base, "creators", "add", "7")...); err != nil {
		t.Fatalf("creators add: %v", err)
	}
	out, err := run(t, append(base, "sync", "7", "--dry-run")...)
	if err != nil {
		t.Fatalf("sync across three slow pages: %v", err)
	}
	if !strings.Contains(out, "3 new videos") {
		t.Errorf("sync = %q", out)
	}
}

func TestListingAllCategories(t *testing.T) {
	tids := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == bili.PathNav {
			w.Write([]byte(`{"code":0,"data":{"wbi_img":{"img_url":"https://x/a.png","sub_url":"https://x/b.png"}}}`))
			return
		}
		tids <- r.URL.Query().Get("tid")
		w.Write([]byte(`{"code":0,"data":{"list":{"vlist":[]},"page":{"pn":1,"ps":25,"count":0}}}`))
	}))
	t.Cleanup(srv.Close)

	if _, err := run(t, "--base-url", srv.URL, "listing", "--mid", "7", "--tid", "0"); err != nil {
		t.Fatalf("listing: %v", err)
	}
	if got := <-tids; got != "0" {
		t.Errorf("tid = %q, want 0", got)
	}

	if _, err := run(t, "--base-url", srv.URL, "listing", "--mid", "7"); err != nil {
		t.Fatalf("listing: %v", err)
	}
	if got := <-tids; got != "3" {
		t.Errorf("default tid = %q, want 3", got)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "bili-audio dev") {
		t.Errorf("version = %q", out)
	}
}
