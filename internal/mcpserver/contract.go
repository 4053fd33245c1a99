package mcpserver

// CardFormatContract describes the vCard subset that LLM consumers must
// produce when creating cards.
const CardFormatContract = `# Cardex Card Format Contract

Every card file holds exactly one vCard 4.0 object (RFC 6350 subset).

## Structure

` + "```" + `
BEGIN:VCARD
VERSION:4.0
FN:Jane Doe
N:Doe;Jane;;;
BDAY:19850312
TEL;TYPE=cell:+1-555-0100
EMAIL:jane@example.com
END:VCARD
` + "```" + `

## Rules

1. **Line endings are CRLF.** Every line, including the last, ends with ` + "`\\r\\n`" + `.
2. **BEGIN:VCARD** is the first line, **VERSION:4.0** appears once, and
   **END:VCARD** is the last line. Nothing may follow it.
3. **FN is required** and appears exactly once with a single value.
4. **Folding:** a line starting with a single space continues the previous line.
5. **Groups** prefix the name with a dot: ` + "`item1.EMAIL:jane@example.com`" + `.
6. **Parameters** follow the name, separated by ';': ` + "`TEL;TYPE=cell:...`" + `.
7. **Values** are split on unescaped ';'. Escape a literal ';' as ` + "`\\;`" + `.
8. **Dates** (BDAY, ANNIVERSARY) use ` + "`YYYYMMDD`" + `, ` + "`--MMDD`" + `, or
   ` + "`YYYYMMDDThhmmss[Z]`" + `. Free text needs ` + "`VALUE=text`" + `:
   ` + "`BDAY;VALUE=text:circa 1990`" + `.
9. **File paths** end with ` + "`.vcf`" + ` and use forward slashes.

## Supported properties

| Property | Values | Cardinality |
|---|---|---|
| SOURCE, XML, NICKNAME, PHOTO, EMAIL, IMPP, LANG, TZ, GEO, TITLE, ROLE, LOGO, MEMBER, RELATED, CATEGORIES, NOTE, SOUND, URL, KEY, FBURL, CALADRURI, CALURI | 1 | any |
| TEL | 1 or 2 | any |
| ORG | 1 or more | any |
| ADR | 7 | any |
| CLIENTPIDMAP | 2 | any |
| N | 5 | at most one |
| GENDER | 1 or 2 | at most one |
| KIND, PRODID, REV, UID | 1 | at most one |

Any other property name is rejected.

## Error codes

- ` + "`INV_FILE`" + ` the file cannot be opened or is not a .vcf
- ` + "`INV_CARD`" + ` missing or misplaced BEGIN, VERSION, FN or END
- ` + "`INV_PROP`" + ` a malformed line or a property breaking the table above
- ` + "`INV_DT`" + ` a malformed BDAY or ANNIVERSARY
`
