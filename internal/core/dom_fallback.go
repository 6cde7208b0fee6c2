package core

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// saveCountRe 从计数文案中提取收藏数
var saveCountRe = regexp.MustCompile(`([\d.,]+\s*[KMBkmb]?)\s*[Ss]aves?`)

// commentCountRe 从计数文案中提取评论数
var commentCountRe = regexp.MustCompile(`([\d.,]+\s*[KMBkmb]?)\s*[Cc]omments?`)

// metaContent 读取meta标签的content属性,依次尝试property与name定位
func metaContent(session models.PageSession, key string) string {
	for _, selector := range []string{
		fmt.Sprintf("meta[property='%s']", key),
		fmt.Sprintf("meta[name='%s']", key),
	} {
		if node, ok := session.QueryFirst(selector); ok {
			if content := strings.TrimSpace(session.ReadAttribute(node, "content")); content != "" {
				return content
			}
		}
	}
	return ""
}

// firstMeta 按优先级取首个非空的meta内容
func firstMeta(session models.PageSession, keys ...string) string {
	for _, key := range keys {
		if content := metaContent(session, key); content != "" {
			return content
		}
	}
	return ""
}

// imageSrcLadder 图片元素的取源降级顺序
var imageSrcLadder = []string{"src", "data-src", "data-lazy-src"}

// readImageSrc 从图片元素读取可用的图片地址
func readImageSrc(session models.PageSession, node models.NodeRef) string {
	for _, attr := range imageSrcLadder {
		if src := strings.TrimSpace(session.ReadAttribute(node, attr)); src != "" {
			return src
		}
	}
	// srcset取首个URL
	if srcset := strings.TrimSpace(session.ReadAttribute(node, "srcset")); srcset != "" {
		first := strings.Fields(strings.Split(srcset, ",")[0])
		if len(first) > 0 {
			return first[0]
		}
	}
	return ""
}

// findTextContaining 在页面中查找包含指定计数词的短文本
// 限制文本长度避免命中整块容器
func findTextContaining(session models.PageSession, word string) string {
	js := fmt.Sprintf(`() => {
		const re = /[\d.,]+\s*[KMBkmb]?\s*%s/;
		for (const el of document.querySelectorAll('div,span,a')) {
			const t = (el.textContent || '').trim();
			if (t.length > 0 && t.length < 80 && re.test(t)) {
				return t;
			}
		}
		return '';
	}`, word)

	out, err := session.RunScript(js)
	if err != nil {
		utils.Debugf("计数文案探测失败 [%s]: %v", word, err)
		return ""
	}
	return out
}

// counterProbeSelectors 社交计数容器的候选选择器
var counterProbeSelectors = []string{
	"[data-test-id='socialCount']",
	"[class*='SocialCounts']",
}

// probeCounterText 收集可能含有社交计数的文本
func probeCounterText(session models.PageSession) string {
	var sb strings.Builder
	for _, selector := range counterProbeSelectors {
		if node, ok := session.QueryFirst(selector); ok {
			sb.WriteString(session.ReadText(node))
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// applyDOMFallback 对仍为空的字段逐项尝试DOM与meta兜底
func applyDOMFallback(ws *workingSet, session models.PageSession) {
	rec := &ws.rec

	if rec.Title == "" {
		ws.set(&rec.Title, firstMeta(session, "og:title", "twitter:title"))
	}
	if rec.Title == "" {
		for _, selector := range []string{"h1", "h2"} {
			if node, ok := session.QueryFirst(selector); ok {
				ws.set(&rec.Title, session.ReadText(node))
			}
			if rec.Title != "" {
				break
			}
		}
	}

	if rec.Description == "" {
		ws.set(&rec.Description, firstMeta(session, "og:description", "description"))
	}

	if rec.ImageURL == "" {
		ws.set(&rec.ImageURL, firstMeta(session, "og:image"))
	}
	if rec.ImageURL == "" {
		for _, selector := range []string{"div[data-test-id='pin-closeup-image'] img", "img"} {
			if node, ok := session.QueryFirst(selector); ok {
				ws.set(&rec.ImageURL, readImageSrc(session, node))
			}
			if rec.ImageURL != "" {
				break
			}
		}
	}

	if rec.SaveCount == "" || rec.CommentCount == "" {
		text := probeCounterText(session)
		if rec.SaveCount == "" {
			if m := saveCountRe.FindStringSubmatch(text); m != nil {
				ws.set(&rec.SaveCount, utils.ParseCompactNumber(m[1]))
			}
		}
		if rec.CommentCount == "" {
			if m := commentCountRe.FindStringSubmatch(text); m != nil {
				ws.set(&rec.CommentCount, utils.ParseCompactNumber(m[1]))
			}
		}
	}
	if rec.SaveCount == "" {
		if m := saveCountRe.FindStringSubmatch(findTextContaining(session, "[Ss]aves?")); m != nil {
			ws.set(&rec.SaveCount, utils.ParseCompactNumber(m[1]))
		}
	}
	if rec.CommentCount == "" {
		if m := commentCountRe.FindStringSubmatch(findTextContaining(session, "[Cc]omments?")); m != nil {
			ws.set(&rec.CommentCount, utils.ParseCompactNumber(m[1]))
		}
	}

	if rec.PinnerProfileURL == "" || rec.BoardURL == "" || rec.OutboundLink == "" {
		applyAnchorHeuristics(ws, session)
	}

	if rec.CreatedAt == "" {
		if node, ok := session.QueryFirst("time"); ok {
			ws.set(&rec.CreatedAt, session.ReadAttribute(node, "datetime"))
		}
	}
}

// maxAnchorScan 锚点启发式最多检查的链接数
const maxAnchorScan = 120

// applyAnchorHeuristics 从页面链接推断发布者主页、画板地址与外链
// 站内单段路径视为用户主页,双段非Pin路径视为画板,站外域名视为外链
func applyAnchorHeuristics(ws *workingSet, session models.PageSession) {
	rec := &ws.rec

	anchors := session.QueryAll("a")
	if len(anchors) > maxAnchorScan {
		anchors = anchors[:maxAnchorScan]
	}

	for _, anchor := range anchors {
		href := strings.TrimSpace(session.ReadAttribute(anchor, "href"))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}

		parsed, err := url.Parse(href)
		if err != nil || parsed.Scheme == "" && parsed.Host == "" && !strings.HasPrefix(href, "/") {
			continue
		}

		onSite := parsed.Host == "" || strings.HasSuffix(parsed.Host, "pinterest.com")
		if !onSite {
			if parsed.Scheme == "http" || parsed.Scheme == "https" {
				ws.set(&rec.OutboundLink, href)
			}
			continue
		}

		segments := splitPathSegments(parsed.Path)
		switch len(segments) {
		case 1:
			if segments[0] == "pin" || segments[0] == "search" || segments[0] == "ideas" {
				continue
			}
			ws.set(&rec.PinnerUsername, segments[0])
			ws.set(&rec.PinnerProfileURL, models.PinBaseURL+"/"+segments[0]+"/")
		case 2:
			if segments[0] == "pin" || segments[0] == "search" || segments[0] == "ideas" {
				continue
			}
			ws.set(&rec.BoardURL, models.PinBaseURL+"/"+segments[0]+"/"+segments[1]+"/")
		}

		if rec.PinnerProfileURL != "" && rec.BoardURL != "" && rec.OutboundLink != "" {
			return
		}
	}
}

// splitPathSegments 拆分URL路径为非空段
func splitPathSegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
