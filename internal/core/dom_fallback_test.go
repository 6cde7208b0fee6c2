package core

import (
	"testing"
)

func TestApplyDOMFallbackMeta(t *testing.T) {
	session := newFakeSession()
	session.nodes["meta[property='og:title']"] = []*fakeNode{{attrs: map[string]string{"content": "Meta标题"}}}
	session.nodes["meta[name='description']"] = []*fakeNode{{attrs: map[string]string{"content": "Meta描述"}}}
	session.nodes["meta[property='og:image']"] = []*fakeNode{{attrs: map[string]string{"content": "https://i.pinimg.com/originals/m.jpg"}}}

	ws := &workingSet{}
	applyDOMFallback(ws, session)

	if ws.rec.Title != "Meta标题" {
		t.Errorf("标题 = %s", ws.rec.Title)
	}
	if ws.rec.Description != "Meta描述" {
		t.Errorf("描述 = %s", ws.rec.Description)
	}
	if ws.rec.ImageURL != "https://i.pinimg.com/originals/m.jpg" {
		t.Errorf("图片 = %s", ws.rec.ImageURL)
	}
}

func TestApplyDOMFallbackHeadingAndImage(t *testing.T) {
	session := newFakeSession()
	session.nodes["h1"] = []*fakeNode{{text: "  页面标题  "}}
	session.nodes["img"] = []*fakeNode{{attrs: map[string]string{
		"data-src": "https://i.pinimg.com/564x/lazy.jpg",
	}}}

	ws := &workingSet{}
	applyDOMFallback(ws, session)

	if ws.rec.Title != "页面标题" {
		t.Errorf("标题 = %q", ws.rec.Title)
	}
	// src缺失时降级到data-src
	if ws.rec.ImageURL != "https://i.pinimg.com/564x/lazy.jpg" {
		t.Errorf("图片 = %s", ws.rec.ImageURL)
	}
}

func TestReadImageSrcSrcset(t *testing.T) {
	session := newFakeSession()
	node := &fakeNode{attrs: map[string]string{
		"srcset": "https://i.pinimg.com/236x/a.jpg 1x, https://i.pinimg.com/474x/a.jpg 2x",
	}}

	got := readImageSrc(session, node)
	if got != "https://i.pinimg.com/236x/a.jpg" {
		t.Errorf("srcset取首个URL失败: %s", got)
	}
}

func TestApplyDOMFallbackCounters(t *testing.T) {
	session := newFakeSession()
	session.nodes["[data-test-id='socialCount']"] = []*fakeNode{{text: "2.1K saves · 37 comments"}}

	ws := &workingSet{}
	applyDOMFallback(ws, session)

	if ws.rec.SaveCount != "2100" {
		t.Errorf("收藏数 = %s, 期望 2100", ws.rec.SaveCount)
	}
	if ws.rec.CommentCount != "37" {
		t.Errorf("评论数 = %s, 期望 37", ws.rec.CommentCount)
	}
}

func TestApplyAnchorHeuristics(t *testing.T) {
	session := newFakeSession()
	session.nodes["a"] = []*fakeNode{
		{attrs: map[string]string{"href": "https://www.pinterest.com/pin/999/"}},
		{attrs: map[string]string{"href": "https://www.pinterest.com/alice/"}},
		{attrs: map[string]string{"href": "https://www.pinterest.com/alice/travel-ideas/"}},
		{attrs: map[string]string{"href": "https://example.com/source-article"}},
	}

	ws := &workingSet{}
	applyAnchorHeuristics(ws, session)

	if ws.rec.PinnerUsername != "alice" {
		t.Errorf("发布者 = %s", ws.rec.PinnerUsername)
	}
	if ws.rec.PinnerProfileURL != "https://www.pinterest.com/alice/" {
		t.Errorf("发布者主页 = %s", ws.rec.PinnerProfileURL)
	}
	if ws.rec.BoardURL != "https://www.pinterest.com/alice/travel-ideas/" {
		t.Errorf("画板 = %s", ws.rec.BoardURL)
	}
	if ws.rec.OutboundLink != "https://example.com/source-article" {
		t.Errorf("外链 = %s", ws.rec.OutboundLink)
	}
}

func TestApplyDOMFallbackCreatedAt(t *testing.T) {
	session := newFakeSession()
	session.nodes["time"] = []*fakeNode{{attrs: map[string]string{"datetime": "2024-05-01T10:00:00Z"}}}

	ws := &workingSet{}
	applyDOMFallback(ws, session)

	if ws.rec.CreatedAt != "2024-05-01T10:00:00Z" {
		t.Errorf("创建时间 = %s", ws.rec.CreatedAt)
	}
}
