package network

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reel-cli/reel/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a local plain-http server", t, func() {
		var agent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent = r.Header.Get("User-Agent")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		for _, fingerprint := range []bool{false, true} {
			c := New(fingerprint)

			resp, err := c.Get(srv.URL)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
			So(agent, ShouldEqual, constant.UserAgent)
		}
	})

	Convey("Client should be shared", t, func() {
		So(Client(), ShouldEqual, Client())
	})
}
