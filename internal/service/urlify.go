package service

import "regexp"

// 两个有序、互不重叠的替换模式。
// 只有位于行首或空格之后的地址才会被识别；匹配不区分大小写，
// 且单个匹配允许跨越换行 (字符类只排除空格)。
var (
	// 带 scheme 前缀的完整 URL，例如 http://example.com
	schemeURLPattern = regexp.MustCompile(`(?im)(^| )([a-z][a-z0-9+.-]*://[^ ]+)`)
	// 裸主机名，例如 www.example.com 或 ftp.example.com，链接目标需补上 http://
	bareHostPattern = regexp.MustCompile(`(?im)(^| )((?:www|ftp)\.[^ ]+)`)
)

// Urlify 把正文里的裸 URL 包装成在新窗口打开的链接标记。
// 这是尽力而为的链接化处理，不做 HTML 转义——输入被信任为不含恶意标记。
// 第二个模式不会命中第一个模式的输出：锚标记内部的地址前面是引号或 '>' 而非空格。
func Urlify(text string) string {
	text = schemeURLPattern.ReplaceAllString(text, `$1<a class="link" href="$2" target="_blank">$2</a>`)
	text = bareHostPattern.ReplaceAllString(text, `$1<a class="link" href="http://$2" target="_blank">$2</a>`)
	return text
}
