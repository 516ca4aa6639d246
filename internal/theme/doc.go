// Package theme holds the colors, fonts and icons used to draw popups.
// Light and dark themes are embedded; custom themes are loaded from
// ~/.config/toaststack/themes/<name>.toml and hot-reloaded while in use.
package theme
