package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ToucheSir/svblog/internal/service"
)

// --- 测试 Urlify 函数 ---

func TestUrlify_SchemeURL(t *testing.T) {
	got := service.Urlify("visit http://example.com today")

	// URL 被包装为在新窗口打开的链接，后面的单词保持原样
	assert.Contains(t, got, `<a class="link" href="http://example.com" target="_blank">http://example.com</a>`)
	assert.Contains(t, got, " today")
	assert.Equal(t, `visit <a class="link" href="http://example.com" target="_blank">http://example.com</a> today`, got)
}

func TestUrlify_SchemeURLAtStartOfLine(t *testing.T) {
	got := service.Urlify("https://example.org/page?q=1")

	assert.Equal(t, `<a class="link" href="https://example.org/page?q=1" target="_blank">https://example.org/page?q=1</a>`, got)
}

func TestUrlify_BareWWWHost(t *testing.T) {
	got := service.Urlify("see www.example.com")

	// 链接目标补上 http:// 前缀，显示文本保持不变
	assert.Equal(t, `see <a class="link" href="http://www.example.com" target="_blank">www.example.com</a>`, got)
}

func TestUrlify_BareFTPHost(t *testing.T) {
	got := service.Urlify("grab it from ftp.example.net")

	assert.Contains(t, got, `href="http://ftp.example.net"`)
	assert.Contains(t, got, `>ftp.example.net</a>`)
}

func TestUrlify_CaseInsensitive(t *testing.T) {
	got := service.Urlify("see WWW.Example.COM")

	assert.Contains(t, got, `href="http://WWW.Example.COM"`)
}

func TestUrlify_NoBoundaryNoMatch(t *testing.T) {
	// 不在行首或空格之后开始的地址不被识别
	input := "betawww.example.com or 9http://example.com"
	got := service.Urlify(input)

	assert.Equal(t, input, got)
}

func TestUrlify_PlainTextUntouched(t *testing.T) {
	input := "no links here, just words."
	assert.Equal(t, input, service.Urlify(input))
}

func TestUrlify_TwoPassesDoNotOverlap(t *testing.T) {
	// 第一遍生成的锚标记内含 www. 主机名，第二遍不得再次包装它
	got := service.Urlify("go to http://www.example.com now")

	assert.Equal(t, `go to <a class="link" href="http://www.example.com" target="_blank">http://www.example.com</a> now`, got)
}

func TestUrlify_MultipleURLs(t *testing.T) {
	got := service.Urlify("first http://a.com then www.b.org done")

	assert.Contains(t, got, `href="http://a.com"`)
	assert.Contains(t, got, `href="http://www.b.org"`)
}
