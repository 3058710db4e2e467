package hls_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/internal/reel/hls"
)

const token = "tok.en.sig"

var targets = hls.Targets{
	SegmentURL: func(name string) string {
		return "https://api.test/v1/hls/segment/c1/s1/" + name + "?hlsToken=" + token
	},
	KeyURL: "https://api.test/v1/hls/key/c1/s1?hlsToken=" + token,
}

const manifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXT-X-KEY:METHOD=AES-128,URI="https://storage.example/keys/c1-s1.key",IV=0x000102030405060708090a0b0c0d0e0f

#EXTINF:10.0,
seg_000.ts
#EXTINF:10.0,
seg_001.ts
#EXTINF:4.5,
seg_002.ts
#EXT-X-ENDLIST
`

func TestRewrite_SegmentsAndKey(t *testing.T) {
	out, res := hls.Rewrite([]byte(manifest), targets)
	require.Equal(t, hls.Result{Segments: 3, Keys: 1}, res)

	inLines := strings.Split(manifest, "\n")
	outLines := strings.Split(string(out), "\n")
	require.Len(t, outLines, len(inLines))

	var segments, keys int
	for i, line := range outLines {
		switch {
		case strings.HasPrefix(line, "https://api.test/v1/hls/segment/"):
			segments++
			require.Contains(t, line, "hlsToken="+token)
			require.Equal(t, targets.SegmentURL(inLines[i]), line)
		case strings.HasPrefix(line, "#EXT-X-KEY:"):
			keys++
			require.Equal(t,
				`#EXT-X-KEY:METHOD=AES-128,URI="`+targets.KeyURL+`",IV=0x000102030405060708090a0b0c0d0e0f`,
				line)
		default:
			require.Equal(t, inLines[i], line, "line %d must be untouched", i)
		}
	}
	require.Equal(t, 3, segments)
	require.Equal(t, 1, keys)
	require.NotContains(t, string(out), "storage.example")
}

func TestRewrite_PreservesCRLF(t *testing.T) {
	in := "#EXTM3U\r\n#EXTINF:10.0,\r\nseg_000.ts\r\n\r\n#EXT-X-ENDLIST"
	out, res := hls.Rewrite([]byte(in), targets)
	require.Equal(t, 1, res.Segments)
	require.Equal(t,
		"#EXTM3U\r\n#EXTINF:10.0,\r\n"+targets.SegmentURL("seg_000.ts")+"\r\n\r\n#EXT-X-ENDLIST",
		string(out))
}

func TestRewrite_LeavesOtherDirectivesAlone(t *testing.T) {
	cases := []string{
		"#EXT-X-KEY:METHOD=NONE",
		`#EXT-X-KEY:METHOD=SAMPLE-AES,URI="skd://key"`,
		`#EXT-X-MAP:URI="init.ts"`,
		"#EXT-X-DISCONTINUITY",
		"# comment ending in .ts",
		"chunk.m4s",
		"https://cdn.example/seg.ts?sig=abc",
	}
	for _, line := range cases {
		t.Run(line, func(t *testing.T) {
			out, res := hls.Rewrite([]byte(line+"\n"), targets)
			require.Equal(t, line+"\n", string(out))
			require.Zero(t, res.Keys)
			require.Zero(t, res.Segments)
		})
	}
}

func TestRewrite_SegmentPathsAreNotRerouted(t *testing.T) {
	in := "seg_000.ts\n720p/seg_000.ts\nhttps://cdn.example/seg_001.ts\n../seg_002.ts\n"
	out, res := hls.Rewrite([]byte(in), targets)

	require.Equal(t, 1, res.Segments)
	require.Equal(t, 3, res.Unrouted)
	require.Equal(t, targets.SegmentURL("seg_000.ts")+"\n720p/seg_000.ts\nhttps://cdn.example/seg_001.ts\n../seg_002.ts\n", string(out))
}

func TestRewrite_KeyWithoutURIGetsOne(t *testing.T) {
	out, res := hls.Rewrite([]byte("#EXT-X-KEY:METHOD=AES-128\n"), targets)
	require.Equal(t, 1, res.Keys)
	require.Equal(t, `#EXT-X-KEY:METHOD=AES-128,URI="`+targets.KeyURL+`"`+"\n", string(out))
}

func TestRewrite_CustomExtension(t *testing.T) {
	tg := targets
	tg.SegmentExt = ".aac"
	out, res := hls.Rewrite([]byte("a.aac\nb.ts\n"), tg)
	require.Equal(t, 1, res.Segments)
	require.Equal(t, targets.SegmentURL("a.aac")+"\nb.ts\n", string(out))
}

func TestRewrite_Empty(t *testing.T) {
	out, res := hls.Rewrite(nil, targets)
	require.Empty(t, out)
	require.Zero(t, res)
}

func TestParseAttributes_QuotedCommas(t *testing.T) {
	attrs := hls.ParseAttributes(`METHOD=AES-128,URI="https://x/k?a=1,b=2",KEYFORMAT="identity"`)
	require.Len(t, attrs, 3)
	require.Equal(t, "https://x/k?a=1,b=2", attrs.Get("URI"))
	require.Equal(t, "identity", attrs.Get("KEYFORMAT"))
	require.Equal(t, "", attrs.Get("IV"))
}

func TestValidSegmentName(t *testing.T) {
	valid := []string{"seg_000.ts", "index0.ts", "a-b.c.ts"}
	invalid := []string{"", ".ts", "../seg.ts", "a/b.ts", `a\b.ts`, "seg.m4s", "..ts", "seg\x00.ts", strings.Repeat("a", 300) + ".ts"}

	for _, n := range valid {
		require.True(t, hls.ValidSegmentName(n, ""), n)
	}
	for _, n := range invalid {
		require.False(t, hls.ValidSegmentName(n, ""), n)
	}
}
