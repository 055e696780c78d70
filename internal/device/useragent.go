// SPDX-License-Identifier: MIT

package device

import "strings"

// IsSafariBrowser detects Safari on macOS/iOS.
// Safari has "Safari/" and "AppleWebKit/", but not "Chrome/".
func IsSafariBrowser(userAgent string) bool {
	hasSafari := strings.Contains(userAgent, "Safari/")
	hasChrome := strings.Contains(userAgent, "Chrome/") || strings.Contains(userAgent, "Chromium/") || strings.Contains(userAgent, "CriOS/")
	hasWebKit := strings.Contains(userAgent, "AppleWebKit/")
	return hasWebKit && hasSafari && !hasChrome
}

// isAppleTablet matches iPads that still identify themselves as such.
// iPadOS in desktop mode reports a Macintosh UA and is classified as desktop.
func isAppleTablet(ua string) bool {
	return strings.Contains(ua, "iPad")
}

// isApplePhone matches iPhones and iPods.
func isApplePhone(ua string) bool {
	return strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPod")
}

// isAndroid reports Android and whether the browser asked for the mobile layout.
// Android tablets omit the "Mobile" token.
func isAndroid(ua string) (android, mobile bool) {
	if !strings.Contains(ua, "Android") {
		return false, false
	}
	return true, strings.Contains(ua, "Mobile")
}

func isGenericTablet(ua string) bool {
	lower := strings.ToLower(ua)
	return strings.Contains(lower, "tablet") || strings.Contains(lower, "kindle") || strings.Contains(lower, "silk/")
}

func isGenericMobile(ua string) bool {
	return strings.Contains(ua, "Mobi") || strings.Contains(ua, "Opera Mini") || strings.Contains(ua, "Windows Phone")
}

// classifyUserAgent applies the User-Agent heuristics only.
func classifyUserAgent(ua string) Class {
	switch {
	case isAppleTablet(ua):
		return Tablet
	case isApplePhone(ua):
		return Mobile
	}
	if android, mobile := isAndroid(ua); android {
		if mobile {
			return Mobile
		}
		return Tablet
	}
	switch {
	case isGenericTablet(ua):
		return Tablet
	case isGenericMobile(ua):
		return Mobile
	}
	return Desktop
}
