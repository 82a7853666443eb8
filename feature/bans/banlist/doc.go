// Package banlist reads and writes the game server's ban file format.
//
// The server publishes its ban list as an ini-style file with two line
// shapes: full Bans=(...) records and legacy BannedIDs=(...) entries that
// carry only a net ID. ParseBans turns the file into ban records; BanLine
// is the inverse, producing a line an operator can paste back into the
// server's file.
//
// The file encoding varies (UTF-16LE from the server, UTF-8 from manual
// exports); Decode sniffs it per file.
package banlist
