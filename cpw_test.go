package cpw_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/cpw"
	"oss.terrastruct.com/cpw/cpwdesign"
	"oss.terrastruct.com/cpw/cpwroute"
	"oss.terrastruct.com/cpw/lib/log"
)

const testDesignJSON = `{
	"components": [
		{
			"id": "q1",
			"box": {"x1": -1, "y1": -1, "x2": 0, "y2": 1},
			"pins": [{"name": "feed", "middle": {"x": 0, "y": 0}, "normal": [1, 0], "width": 1, "gap": 0.5}]
		},
		{
			"id": "q2",
			"box": {"x1": 10, "y1": -1, "x2": 11, "y2": 1},
			"pins": [{"name": "feed", "middle": {"x": 10, "y": 0}, "normal": [-1, 0], "width": 1, "gap": 0.5}]
		}
	]
}`

type recordingStore struct {
	routes []*cpwroute.Route
	err    error
}

func (s *recordingStore) Commit(ctx context.Context, r *cpwroute.Route) error {
	if s.err != nil {
		return s.err
	}
	s.routes = append(s.routes, r)
	return nil
}

func busRequest(id string) cpw.RouteRequest {
	return cpw.RouteRequest{
		ID: id,
		Options: cpwroute.RawOptions{
			Start:      cpwdesign.PinRef{Component: "q1", Pin: "feed"},
			End:        cpwdesign.PinRef{Component: "q2", Pin: "feed"},
			TraceWidth: "1",
		},
	}
}

func TestRoute(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d, err := cpwdesign.DeserializeDesign([]byte(testDesignJSON))
	if err != nil {
		t.Fatal(err)
	}

	store := &recordingStore{}
	r, err := cpw.Route(ctx, d, busRequest("bus1"), &cpw.RouteOptions{Store: store})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(r.Points))
	assert.Equal(t, 10.0, r.RealizedLength)
	assert.Equal(t, []*cpwroute.Route{r}, store.routes)

	// The interconnect is placed and wired to its terminals.
	bus, ok := d.Component("bus1")
	assert.True(t, ok)
	_, ok = bus.Pin("start")
	assert.True(t, ok)
	_, ok = bus.Pin("end")
	assert.True(t, ok)

	startNet, ok := d.Nets().NetOf(cpwdesign.PinRef{Component: "q1", Pin: "feed"})
	assert.True(t, ok)
	busNet, ok := d.Nets().NetOf(cpwdesign.PinRef{Component: "bus1", Pin: "start"})
	assert.True(t, ok)
	assert.Equal(t, startNet, busNet)
	assert.Equal(t, 4, len(d.Nets().Entries()))
}

func TestRouteRejects(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d, err := cpwdesign.DeserializeDesign([]byte(testDesignJSON))
	if err != nil {
		t.Fatal(err)
	}

	// Empty ids and ids already in the design are refused outright.
	_, err = cpw.Route(ctx, d, busRequest(""), nil)
	assert.Error(t, err)
	_, err = cpw.Route(ctx, d, busRequest("q1"), nil)
	assert.Error(t, err)

	_, err = cpw.Route(ctx, d, busRequest("bus1"), nil)
	assert.NoError(t, err)
	_, err = cpw.Route(ctx, d, busRequest("bus1"), nil)
	assert.Error(t, err)
}

func TestRoutePinReuse(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d, err := cpwdesign.DeserializeDesign([]byte(testDesignJSON))
	if err != nil {
		t.Fatal(err)
	}

	_, err = cpw.Route(ctx, d, busRequest("bus1"), nil)
	assert.NoError(t, err)

	// Both terminals are taken now.
	_, err = cpw.Route(ctx, d, busRequest("bus2"), nil)
	var reused cpwdesign.PinAlreadyConnectedError
	assert.True(t, errors.As(err, &reused))
	_, ok := d.Component("bus2")
	assert.False(t, ok)
}

func TestRouteStoreFailure(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d, err := cpwdesign.DeserializeDesign([]byte(testDesignJSON))
	if err != nil {
		t.Fatal(err)
	}

	store := &recordingStore{err: errors.New("commit refused")}
	_, err = cpw.Route(ctx, d, busRequest("bus1"), &cpw.RouteOptions{Store: store})
	assert.Error(t, err)

	// Nothing was placed and nothing was wired.
	_, ok := d.Component("bus1")
	assert.False(t, ok)
	assert.Equal(t, 0, len(d.Nets().Entries()))
}

func TestRouteCustomUnitParser(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d, err := cpwdesign.DeserializeDesign([]byte(testDesignJSON))
	if err != nil {
		t.Fatal(err)
	}

	req := busRequest("bus1")
	req.Options.TraceWidth = "2x"
	parse := func(s string) (float64, error) {
		var v float64
		_, err := fmt.Sscanf(s, "%fx", &v)
		return v / 2, err
	}
	r, err := cpw.Route(ctx, d, req, &cpw.RouteOptions{Parse: parse})
	assert.NoError(t, err)
	assert.Equal(t, 1.0, r.Width)
}

func TestRouteAll(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	doc := &cpw.Document{
		Design: json.RawMessage(testDesignJSON),
		Routes: []cpw.RouteRequest{busRequest("bus1")},
	}
	store := &recordingStore{}
	res, err := cpw.RouteAll(ctx, doc, &cpw.RouteOptions{Store: store})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(res.Routes))
	assert.Equal(t, 1, len(store.routes))

	// The returned design carries the placed interconnect.
	d, err := cpwdesign.DeserializeDesign(res.Design)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(d.Components()))
	_, ok := d.Component("bus1")
	assert.True(t, ok)
}

func TestRouteAllOrderMatters(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	// q3 and q4 face each other across the corridor bus1 routes through,
	// so bus2 is only blocked because bus1 was placed first.
	design := `{
		"components": [
			{
				"id": "q1",
				"box": {"x1": -1, "y1": -1, "x2": 0, "y2": 1},
				"pins": [{"name": "feed", "middle": {"x": 0, "y": 0}, "normal": [1, 0], "width": 1}]
			},
			{
				"id": "q2",
				"box": {"x1": 10, "y1": -1, "x2": 11, "y2": 1},
				"pins": [{"name": "feed", "middle": {"x": 10, "y": 0}, "normal": [-1, 0], "width": 1}]
			},
			{
				"id": "q3",
				"box": {"x1": 4.5, "y1": -4, "x2": 5.5, "y2": -3},
				"pins": [{"name": "feed", "middle": {"x": 5, "y": -3}, "normal": [0, 1], "width": 1}]
			},
			{
				"id": "q4",
				"box": {"x1": 4.5, "y1": 3, "x2": 5.5, "y2": 4},
				"pins": [{"name": "feed", "middle": {"x": 5, "y": 3}, "normal": [0, -1], "width": 1}]
			}
		]
	}`
	doc := &cpw.Document{
		Design: json.RawMessage(design),
		Routes: []cpw.RouteRequest{
			busRequest("bus1"),
			{
				ID: "bus2",
				Options: cpwroute.RawOptions{
					Start:      cpwdesign.PinRef{Component: "q3", Pin: "feed"},
					End:        cpwdesign.PinRef{Component: "q4", Pin: "feed"},
					TraceWidth: "1",
				},
			},
		},
	}

	store := &recordingStore{}
	_, err := cpw.RouteAll(ctx, doc, &cpw.RouteOptions{Store: store})
	var disconnected cpwroute.RouteDisconnectedError
	assert.True(t, errors.As(err, &disconnected))

	// Routes planned before the failure stay committed.
	assert.Equal(t, 1, len(store.routes))
	assert.Equal(t, cpwdesign.PinRef{Component: "q1", Pin: "feed"}, store.routes[0].Start)
}
