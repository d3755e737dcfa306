package constant

// AsciiArtLogo is the application's banner shown in the root help.
const AsciiArtLogo = `
 _ __ ___  ___| |
| '__/ _ \/ _ \ |
| | |  __/  __/ |
|_|  \___|\___|_|
`
