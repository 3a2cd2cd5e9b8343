package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/store"
)

const duplex = `ISO-10303-21;
HEADER;
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCPROJECT('0YvctVUKr0kugbFTf53O9L',#2,'Duplex',$,$,$,$,(#20),#7);
#35=IFCWALLSTANDARDCASE('2O2Fr$t4X7Zf8NOew3FLOH',#2,'Basic Wall',$,$,#36,#40,$);
#50= IFCDOOR ( '1hOSvn6df7F8_7GcBWlRGQ',#2,'Door',$,$,#51,#55,$,2.1,0.9);
#60=IFCCARTESIANPOINT((0.,0.,0.));
ENDSEC;
END-ISO-10303-21;
`

type mapDownloader map[string]string

func (m mapDownloader) Download(_ context.Context, url string, _ int64) ([]byte, error) {
	body, ok := m[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(body), nil
}

func TestHeadlessEngine_Parse(t *testing.T) {
	e := NewHeadlessEngine(nil, 0)
	m, err := e.Parse(t.Context(), []byte(duplex))
	require.NoError(t, err)

	hm := m.(*HeadlessModel)
	assert.Equal(t, map[string]HeadlessElement{
		"0YvctVUKr0kugbFTf53O9L": {LocalID: 1, Type: "IFCPROJECT"},
		"2O2Fr$t4X7Zf8NOew3FLOH": {LocalID: 35, Type: "IFCWALLSTANDARDCASE"},
		"1hOSvn6df7F8_7GcBWlRGQ": {LocalID: 50, Type: "IFCDOOR"},
	}, hm.Elements())

	_, err = e.Parse(t.Context(), []byte("<!DOCTYPE html>"))
	require.Error(t, err)
}

func TestHeadlessEngine_DrivenByCoordinator(t *testing.T) {
	e := NewHeadlessEngine(mapDownloader{"http://api/files/ifc/p1/duplex.ifc": duplex}, 0)
	s := store.New()
	c, err := New(Options{Engine: e, Store: s})
	require.NoError(t, err)

	s.SetColorMap(model.ColorMap{"2O2Fr$t4X7Zf8NOew3FLOH": "#e62020", "1hOSvn6df7F8_7GcBWlRGQ": "#22c55e"})
	s.SetHighlightColorMap(model.ColorMap{"2O2Fr$t4X7Zf8NOew3FLOH": "#10b981"})
	s.HideElements([]string{"0YvctVUKr0kugbFTf53O9L"})

	require.NoError(t, c.Load(t.Context(), "http://api/files/ifc/p1/duplex.ifc"))
	assert.Equal(t, map[string]string{"2O2Fr$t4X7Zf8NOew3FLOH": "#10b981"}, e.Paint())
	assert.EqualValues(t, 1, e.Opacity("2O2Fr$t4X7Zf8NOew3FLOH"))
	assert.Equal(t, GhostOpacity, e.Opacity("1hOSvn6df7F8_7GcBWlRGQ"))
	assert.True(t, e.Hidden("0YvctVUKr0kugbFTf53O9L"))

	s.ClearHighlights()
	require.NoError(t, c.ApplyColors(t.Context()))
	assert.Len(t, e.Paint(), 2)
	assert.EqualValues(t, 1, e.Opacity("1hOSvn6df7F8_7GcBWlRGQ"))

	require.NoError(t, c.Close(t.Context()))
	assert.Nil(t, e.Scene())
}

func TestHeadlessEngine_FetchFailureIsTransport(t *testing.T) {
	e := NewHeadlessEngine(mapDownloader{}, 0)
	c, err := New(Options{Engine: e, Store: store.New()})
	require.NoError(t, err)

	err = c.Load(t.Context(), "http://api/files/missing.ifc")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, CategoryTransport, le.Category)
}
